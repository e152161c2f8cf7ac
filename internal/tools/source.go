package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/adpilot/adpilot/internal/models"
)

// DefaultBackendTimeout bounds each outbound widget data call.
const DefaultBackendTimeout = 10 * time.Second

// DataSource produces the data payload for one widget. Arguments come from
// the tool invocation and are already schema-validated.
type DataSource interface {
	WidgetData(ctx context.Context, widget models.WidgetType, args map[string]any) (map[string]any, error)
}

// BackendOpts holds optional configuration for the backend client.
type BackendOpts struct {
	Timeout          time.Duration
	HTTPClient       *http.Client
	FallbackDisabled bool
}

// BackendOption configures a BackendClient.
type BackendOption func(*BackendOpts)

// WithBackendTimeout overrides the per-call timeout.
func WithBackendTimeout(timeout time.Duration) BackendOption {
	return func(opts *BackendOpts) {
		if timeout > 0 {
			opts.Timeout = timeout
		}
	}
}

// WithBackendHTTPClient overrides the HTTP client, mainly for tests.
func WithBackendHTTPClient(client *http.Client) BackendOption {
	return func(opts *BackendOpts) {
		if client != nil {
			opts.HTTPClient = client
		}
	}
}

// WithBackendFallback controls whether backend failures degrade to the
// deterministic demo dataset. Enabled by default; when disabled, failures
// surface as errors on the tool result instead.
func WithBackendFallback(enabled bool) BackendOption {
	return func(opts *BackendOpts) {
		opts.FallbackDisabled = !enabled
	}
}

// BackendClient fetches widget data from an external automation webhook.
// Unless fallback is disabled, every failure degrades to the deterministic
// demo dataset so one flaky backend call never surfaces as a broken widget.
type BackendClient struct {
	url      string
	client   *http.Client
	fallback *DemoSource
}

// NewBackendClient creates a data source backed by the webhook at url.
func NewBackendClient(url string, options ...BackendOption) *BackendClient {
	opts := &BackendOpts{Timeout: DefaultBackendTimeout}
	for _, opt := range options {
		opt(opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	var fallback *DemoSource
	if !opts.FallbackDisabled {
		fallback = NewDemoSource()
	}
	slog.Debug("BackendClient.NewBackendClient: created", "url", url, "timeout", opts.Timeout, "demoFallback", fallback != nil)
	return &BackendClient{url: url, client: client, fallback: fallback}
}

type widgetDataRequest struct {
	Widget    models.WidgetType `json:"widget"`
	Arguments map[string]any    `json:"arguments,omitempty"`
}

// WidgetData posts the widget request to the backend and returns its JSON
// payload, falling back to demo data on any transport or decode failure.
func (c *BackendClient) WidgetData(ctx context.Context, widget models.WidgetType, args map[string]any) (map[string]any, error) {
	data, err := c.fetch(ctx, widget, args)
	if err != nil {
		if c.fallback == nil {
			slog.Warn("BackendClient.WidgetData: backend call failed, fallback disabled", "error", err, "widget", widget)
			return nil, fmt.Errorf("backend widget data failed: %w", err)
		}
		slog.Warn("BackendClient.WidgetData: backend call failed, using demo data", "error", err, "widget", widget)
		return c.fallback.WidgetData(ctx, widget, args)
	}
	slog.Debug("BackendClient.WidgetData: backend call succeeded", "widget", widget)
	return data, nil
}

func (c *BackendClient) fetch(ctx context.Context, widget models.WidgetType, args map[string]any) (map[string]any, error) {
	body, err := json.Marshal(widgetDataRequest{Widget: widget, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal widget request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create widget request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("widget request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode widget response: %w", err)
	}
	return data, nil
}
