package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/adpilot/adpilot/internal/models"
)

// countingSource wraps the demo source and records which widgets were asked for.
type countingSource struct {
	demo   *DemoSource
	calls  int
	widget models.WidgetType
}

func (s *countingSource) WidgetData(ctx context.Context, widget models.WidgetType, args map[string]any) (map[string]any, error) {
	s.calls++
	s.widget = widget
	return s.demo.WidgetData(ctx, widget, args)
}

func newCountingRegistry(t *testing.T, flavor CatalogFlavor) (*Registry, *countingSource) {
	t.Helper()
	source := &countingSource{demo: NewDemoSource()}
	registry, err := NewRegistry(flavor, source)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return registry, source
}

func TestCatalogIsStableAndComplete(t *testing.T) {
	for _, flavor := range []CatalogFlavor{FlavorData, FlavorSignal} {
		registry, _ := newCountingRegistry(t, flavor)

		defs := registry.Definitions()
		if len(defs) != len(catalogOrder) {
			t.Fatalf("flavor %s: expected %d tools, got %d", flavor, len(catalogOrder), len(defs))
		}
		for i, def := range defs {
			if def.Widget != catalogOrder[i] {
				t.Errorf("flavor %s: tool %d renders %q, want %q", flavor, i, def.Widget, catalogOrder[i])
			}
			if !strings.HasPrefix(def.Name, "show_") {
				t.Errorf("flavor %s: tool name %q missing show_ prefix", flavor, def.Name)
			}
			if def.Description == "" {
				t.Errorf("flavor %s: tool %q has no description", flavor, def.Name)
			}
		}

		oaiTools := registry.OpenAITools()
		if len(oaiTools) != len(defs) {
			t.Errorf("flavor %s: advertised %d provider tools, want %d", flavor, len(oaiTools), len(defs))
		}
		for i, tool := range oaiTools {
			if tool.Function.Name != defs[i].Name {
				t.Errorf("flavor %s: provider tool %d is %q, want %q", flavor, i, tool.Function.Name, defs[i].Name)
			}
		}
	}
}

func TestSignalCatalogTakesNoParameters(t *testing.T) {
	registry, _ := newCountingRegistry(t, FlavorSignal)
	for _, def := range registry.Definitions() {
		props, ok := def.Parameters["properties"].(map[string]any)
		if !ok {
			t.Errorf("tool %q: missing properties object", def.Name)
			continue
		}
		if len(props) != 0 {
			t.Errorf("tool %q: signal catalog must not declare parameters, got %v", def.Name, props)
		}
	}
}

func TestParseCatalogFlavor(t *testing.T) {
	if got := ParseCatalogFlavor("signal"); got != FlavorSignal {
		t.Errorf("ParseCatalogFlavor(signal) = %q", got)
	}
	if got := ParseCatalogFlavor("data"); got != FlavorData {
		t.Errorf("ParseCatalogFlavor(data) = %q", got)
	}
	if got := ParseCatalogFlavor(""); got != FlavorData {
		t.Errorf("ParseCatalogFlavor(empty) = %q, want data default", got)
	}
	if got := ParseCatalogFlavor("garbage"); got != FlavorData {
		t.Errorf("ParseCatalogFlavor(garbage) = %q, want data default", got)
	}
}

func TestToolNameForWidget(t *testing.T) {
	if got := ToolNameForWidget(models.WidgetAdPlan); got != "show_ad_plan" {
		t.Errorf("ToolNameForWidget(ad_plan) = %q", got)
	}
}
