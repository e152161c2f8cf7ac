package tools

import (
	"fmt"

	"github.com/adpilot/adpilot/internal/models"
)

// catalogOrder fixes the advertised tool order for both flavors: golden
// path steps first, detours after.
var catalogOrder = []models.WidgetType{
	models.WidgetPerformanceDashboard,
	models.WidgetThemeSelector,
	models.WidgetTopicSelector,
	models.WidgetAdPlan,
	models.WidgetVehicleSelector,
	models.WidgetScriptApproval,
	models.WidgetGenerationProgress,
	models.WidgetPublish,
	models.WidgetWrapUp,
	models.WidgetRecommendations,
	models.WidgetGuidanceRules,
	models.WidgetAvatarCapture,
	models.WidgetBilling,
}

var catalogDescriptions = map[models.WidgetType]string{
	models.WidgetPerformanceDashboard: "Show the user how last week's published ads performed.",
	models.WidgetThemeSelector:        "Let the user pick this week's advertising theme.",
	models.WidgetTopicSelector:        "Let the user pick educational topics for an educational theme.",
	models.WidgetAdPlan:               "Show the proposed ad plan for the selected theme and topics.",
	models.WidgetVehicleSelector:      "Let the user pick which vehicles to feature this week.",
	models.WidgetScriptApproval:       "Show generated ad scripts for the user to approve or reject.",
	models.WidgetGenerationProgress:   "Show progress of the video generation job.",
	models.WidgetPublish:              "Show generated videos for review and publishing.",
	models.WidgetWrapUp:               "Show the weekly wrap-up summary once publishing is done.",
	models.WidgetRecommendations:      "Show personalized recommendations for improving the account.",
	models.WidgetGuidanceRules:        "Let the user view and edit standing guidance rules for ad generation.",
	models.WidgetAvatarCapture:        "Guide the user through recording a new presenter avatar.",
	models.WidgetBilling:              "Show the user's subscription and billing details.",
}

// dataParameters holds the argument schemas for the data-bearing catalog.
// Widgets absent here take no arguments in either flavor.
var dataParameters = map[models.WidgetType]map[string]any{
	models.WidgetPerformanceDashboard: {
		"type": "object",
		"properties": map[string]any{
			"period": map[string]any{
				"type":        "string",
				"enum":        []any{"last_week", "last_month"},
				"description": "Reporting period to summarize.",
			},
		},
	},
	models.WidgetTopicSelector: {
		"type": "object",
		"properties": map[string]any{
			"theme": map[string]any{
				"type":        "string",
				"description": "The educational theme the topics belong to.",
			},
		},
		"required": []any{"theme"},
	},
	models.WidgetAdPlan: {
		"type": "object",
		"properties": map[string]any{
			"theme": map[string]any{
				"type":        "string",
				"description": "The selected weekly theme.",
			},
			"topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Selected educational topics, if any.",
			},
		},
		"required": []any{"theme"},
	},
	models.WidgetVehicleSelector: {
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{
				"type":        "integer",
				"description": "How many vehicles to suggest.",
			},
		},
	},
	models.WidgetScriptApproval: {
		"type": "object",
		"properties": map[string]any{
			"vehicle_ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Vehicles the scripts were generated for.",
			},
		},
	},
	models.WidgetGenerationProgress: {
		"type": "object",
		"properties": map[string]any{
			"job_id": map[string]any{
				"type":        "string",
				"description": "Generation job to report progress for.",
			},
		},
	},
}

// dataCaptions is the accompanying text the data-bearing catalog attaches
// to each widget result.
var dataCaptions = map[models.WidgetType]string{
	models.WidgetPerformanceDashboard: "Here's how your ads performed.",
	models.WidgetThemeSelector:        "Pick a theme for this week.",
	models.WidgetTopicSelector:        "Choose the topics you'd like to cover.",
	models.WidgetAdPlan:               "Here's the plan for this week's ads.",
	models.WidgetVehicleSelector:      "Select the vehicles to feature.",
	models.WidgetScriptApproval:       "Review the scripts below.",
	models.WidgetGenerationProgress:   "Your videos are being generated.",
	models.WidgetPublish:              "Your videos are ready to review and publish.",
	models.WidgetWrapUp:               "That's a wrap for this week.",
	models.WidgetRecommendations:      "Here are some recommendations for you.",
	models.WidgetGuidanceRules:        "These are your current guidance rules.",
	models.WidgetAvatarCapture:        "Let's record your presenter avatar.",
	models.WidgetBilling:              "Here are your billing details.",
}

// emptyObjectSchema is the schema for tools that take no arguments.
func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// ToolNameForWidget derives the catalog tool name that renders a widget.
func ToolNameForWidget(widget models.WidgetType) string {
	return fmt.Sprintf("show_%s", widget)
}

func catalogDefinitions(flavor CatalogFlavor) []Definition {
	defs := make([]Definition, 0, len(catalogOrder))
	for _, widget := range catalogOrder {
		parameters := emptyObjectSchema()
		if flavor == FlavorData {
			if p, ok := dataParameters[widget]; ok {
				parameters = p
			}
		}
		defs = append(defs, Definition{
			Name:        ToolNameForWidget(widget),
			Description: catalogDescriptions[widget],
			Parameters:  parameters,
			Widget:      widget,
		})
	}
	return defs
}
