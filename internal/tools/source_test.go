package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/adpilot/adpilot/internal/models"
)

func TestDemoSourceIsDeterministic(t *testing.T) {
	source := NewDemoSource()
	args := map[string]any{"theme": "educational"}

	first, err := source.WidgetData(context.Background(), models.WidgetTopicSelector, args)
	if err != nil {
		t.Fatalf("WidgetData failed: %v", err)
	}
	second, err := source.WidgetData(context.Background(), models.WidgetTopicSelector, args)
	if err != nil {
		t.Fatalf("WidgetData failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical payloads for identical input, got %v vs %v", first, second)
	}
	if first["theme"] != "educational" {
		t.Errorf("Expected theme argument echoed into payload, got %v", first["theme"])
	}
}

func TestDemoSourceCoversEveryCatalogWidget(t *testing.T) {
	source := NewDemoSource()
	for _, widget := range catalogOrder {
		data, err := source.WidgetData(context.Background(), widget, nil)
		if err != nil {
			t.Errorf("WidgetData(%q) failed: %v", widget, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("WidgetData(%q) returned empty payload", widget)
		}
	}
}

func TestBackendClientPassesThroughPayload(t *testing.T) {
	var gotRequest widgetDataRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode backend request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"plan": "custom"})
	}))
	defer server.Close()

	client := NewBackendClient(server.URL)
	data, err := client.WidgetData(context.Background(), models.WidgetAdPlan, map[string]any{"theme": "new_arrivals"})
	if err != nil {
		t.Fatalf("WidgetData failed: %v", err)
	}

	if data["plan"] != "custom" {
		t.Errorf("Expected backend payload passed through, got %v", data)
	}
	if gotRequest.Widget != models.WidgetAdPlan {
		t.Errorf("Expected widget ad_plan in request, got %q", gotRequest.Widget)
	}
	if gotRequest.Arguments["theme"] != "new_arrivals" {
		t.Errorf("Expected arguments forwarded, got %v", gotRequest.Arguments)
	}
}

func TestBackendClientFallsBackToDemoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL)
	data, err := client.WidgetData(context.Background(), models.WidgetBilling, nil)
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}

	want, _ := NewDemoSource().WidgetData(context.Background(), models.WidgetBilling, nil)
	if !reflect.DeepEqual(data, want) {
		t.Errorf("Expected demo fallback payload %v, got %v", want, data)
	}
}

func TestBackendClientFallbackDisabledSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, WithBackendFallback(false))
	if _, err := client.WidgetData(context.Background(), models.WidgetBilling, nil); err == nil {
		t.Error("Expected error with fallback disabled, got nil")
	}

	// Explicitly enabling keeps the default behavior.
	client = NewBackendClient(server.URL, WithBackendFallback(true))
	data, err := client.WidgetData(context.Background(), models.WidgetBilling, nil)
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected demo fallback payload, got empty data")
	}
}

func TestBackendClientFallsBackWhenUnreachable(t *testing.T) {
	// Grab a port that is closed by the time the client dials it.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewBackendClient(url)
	data, err := client.WidgetData(context.Background(), models.WidgetWrapUp, nil)
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected demo fallback payload, got empty data")
	}
}
