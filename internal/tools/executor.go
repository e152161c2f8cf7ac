package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/adpilot/adpilot/internal/models"
)

// Execute dispatches one tool invocation. Failures never propagate: an
// unknown name, bad arguments, or a data source error all come back as an
// error-bearing result so the conversation loop can keep going. Unknown
// names short-circuit before any data source is touched.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) *models.ToolResult {
	def, ok := r.defs[name]
	if !ok {
		slog.Warn("Registry.Execute: unknown tool requested", "toolName", name)
		return &models.ToolResult{Error: fmt.Sprintf("unknown tool: %s", name)}
	}

	arguments, err := r.parseArguments(name, args)
	if err != nil {
		slog.Warn("Registry.Execute: invalid tool arguments", "error", err, "toolName", name)
		return &models.ToolResult{Error: fmt.Sprintf("invalid arguments for %s: %v", name, err)}
	}

	data, err := r.source.WidgetData(ctx, def.Widget, arguments)
	if err != nil {
		slog.Error("Registry.Execute: data source failed", "error", err, "toolName", name, "widget", def.Widget)
		return &models.ToolResult{Error: fmt.Sprintf("failed to load %s data: %v", def.Widget, err)}
	}

	result := &models.ToolResult{
		Widget: &models.Widget{Type: def.Widget, Data: data},
	}
	// The signal catalog returns the widget alone; the data catalog pairs
	// it with a short caption.
	if r.flavor == FlavorData {
		result.Text = dataCaptions[def.Widget]
	}
	slog.Debug("Registry.Execute: tool executed", "toolName", name, "widget", def.Widget, "flavor", r.flavor)
	return result
}

// parseArguments decodes the invocation payload and validates it against
// the tool's declared schema. An empty payload means no arguments.
func (r *Registry) parseArguments(name string, args json.RawMessage) (map[string]any, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var arguments map[string]any
	if err := json.Unmarshal(args, &arguments); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	if err := r.resolved[name].Validate(arguments); err != nil {
		return nil, err
	}
	return arguments, nil
}
