// Package tools provides the static tool catalog advertised to the LLM and
// the executor that dispatches tool invocations to widget data sources.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/adpilot/adpilot/internal/models"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// CatalogFlavor selects which catalog shape a deployment advertises.
type CatalogFlavor string

const (
	// FlavorData is the legacy data-bearing catalog: tools accept arguments
	// that parameterize the widget data the handler produces, and results
	// may carry accompanying text alongside the widget.
	FlavorData CatalogFlavor = "data"
	// FlavorSignal is the pure-signal catalog: tools take no arguments and a
	// result is the widget alone; the session layer supplies actual data.
	FlavorSignal CatalogFlavor = "signal"
)

// ParseCatalogFlavor maps a config value onto a catalog flavor, defaulting
// to the data-bearing catalog for empty or unrecognized values.
func ParseCatalogFlavor(value string) CatalogFlavor {
	switch CatalogFlavor(value) {
	case FlavorSignal:
		return FlavorSignal
	case FlavorData:
		return FlavorData
	default:
		if value != "" {
			slog.Warn("tools.ParseCatalogFlavor: unrecognized flavor, using data catalog", "value", value)
		}
		return FlavorData
	}
}

// Definition describes one tool in the catalog: the name and description the
// model selects by, the JSON schema its arguments must satisfy, and the
// widget its result renders.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Widget      models.WidgetType
}

// Registry holds the static tool catalog for one deployment. Definitions
// are loaded once at construction and never mutated afterwards.
type Registry struct {
	flavor    CatalogFlavor
	source    DataSource
	order     []string
	defs      map[string]Definition
	resolved  map[string]*jsonschema.Resolved
	oaiCached []openai.ChatCompletionToolParam
}

// NewRegistry builds the catalog for the given flavor, backed by the given
// widget data source. It fails when a definition's schema does not compile,
// since a broken catalog entry would reject every invocation at runtime.
func NewRegistry(flavor CatalogFlavor, source DataSource) (*Registry, error) {
	defs := catalogDefinitions(flavor)

	r := &Registry{
		flavor:   flavor,
		source:   source,
		defs:     make(map[string]Definition, len(defs)),
		resolved: make(map[string]*jsonschema.Resolved, len(defs)),
	}
	for _, def := range defs {
		resolved, err := resolveSchema(def.Parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for tool %s: %w", def.Name, err)
		}
		r.order = append(r.order, def.Name)
		r.defs[def.Name] = def
		r.resolved[def.Name] = resolved
	}
	r.oaiCached = buildOpenAITools(defs)

	slog.Info("Registry.NewRegistry: catalog loaded", "flavor", flavor, "toolCount", len(r.order))
	return r, nil
}

// Flavor reports which catalog shape this registry advertises.
func (r *Registry) Flavor() CatalogFlavor {
	return r.flavor
}

// Definitions returns the catalog in its stable advertised order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// OpenAITools returns the catalog in the provider's tool parameter shape,
// in the same order as Definitions.
func (r *Registry) OpenAITools() []openai.ChatCompletionToolParam {
	return r.oaiCached
}

func resolveSchema(parameters map[string]any) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	return resolved, nil
}

func buildOpenAITools(defs []Definition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(def.Parameters),
			},
		})
	}
	return tools
}
