package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adpilot/adpilot/internal/models"
)

func TestSSEEmitterFramesEventsInOrder(t *testing.T) {
	rr := httptest.NewRecorder()
	em, err := newSSEEmitter(rr)
	if err != nil {
		t.Fatalf("newSSEEmitter failed: %v", err)
	}

	if got := rr.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rr.Header().Get("Connection"); got != "keep-alive" {
		t.Errorf("Connection = %q", got)
	}

	if err := em.EmitText("hello"); err != nil {
		t.Fatalf("EmitText failed: %v", err)
	}
	if err := em.EmitWidget(&models.Widget{Type: models.WidgetBilling}); err != nil {
		t.Fatalf("EmitWidget failed: %v", err)
	}
	if err := em.Done(); err != nil {
		t.Fatalf("Done failed: %v", err)
	}

	body := rr.Body.String()
	want := "data: {\"content\":\"hello\"}\n\n" +
		"data: {\"widget\":{\"type\":\"billing\"}}\n\n" +
		"data: [DONE]\n\n"
	if body != want {
		t.Errorf("Stream body = %q, want %q", body, want)
	}
}

func TestSSEEmitterErrorRidesContentChannel(t *testing.T) {
	rr := httptest.NewRecorder()
	em, err := newSSEEmitter(rr)
	if err != nil {
		t.Fatalf("newSSEEmitter failed: %v", err)
	}

	if err := em.EmitError("something broke"); err != nil {
		t.Fatalf("EmitError failed: %v", err)
	}
	if !strings.Contains(rr.Body.String(), `{"content":"something broke"}`) {
		t.Errorf("Expected error as content event, got %q", rr.Body.String())
	}
}

func TestSSEEmitterRefusesEventsAfterDone(t *testing.T) {
	rr := httptest.NewRecorder()
	em, err := newSSEEmitter(rr)
	if err != nil {
		t.Fatalf("newSSEEmitter failed: %v", err)
	}

	if err := em.Done(); err != nil {
		t.Fatalf("Done failed: %v", err)
	}
	if err := em.EmitText("late"); err == nil {
		t.Error("Expected EmitText after Done to fail")
	}
	if err := em.Done(); err == nil {
		t.Error("Expected second Done to fail")
	}
	if strings.Contains(rr.Body.String(), "late") {
		t.Error("Late event must not reach the stream")
	}
}
