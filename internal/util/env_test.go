package util

import (
	"os"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}

	for _, tc := range cases {
		os.Unsetenv("TEST_BOOL_ENV")
		if tc.value != "" {
			os.Setenv("TEST_BOOL_ENV", tc.value)
		}
		if got := ParseBoolEnv("TEST_BOOL_ENV", tc.fallback); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.fallback, got, tc.want)
		}
	}
	os.Unsetenv("TEST_BOOL_ENV")
}

func TestParseIntEnv(t *testing.T) {
	os.Setenv("TEST_INT_ENV", "42")
	defer os.Unsetenv("TEST_INT_ENV")
	if got := ParseIntEnv("TEST_INT_ENV", 7); got != 42 {
		t.Errorf("ParseIntEnv = %d, want 42", got)
	}

	os.Setenv("TEST_INT_ENV", "not a number")
	if got := ParseIntEnv("TEST_INT_ENV", 7); got != 7 {
		t.Errorf("ParseIntEnv(invalid) = %d, want default 7", got)
	}

	os.Unsetenv("TEST_INT_ENV")
	if got := ParseIntEnv("TEST_INT_ENV", 7); got != 7 {
		t.Errorf("ParseIntEnv(unset) = %d, want default 7", got)
	}
}
