package tools

import (
	"context"

	"github.com/adpilot/adpilot/internal/models"
)

// DemoSource serves fixed demonstration data for every widget. Output is
// fully deterministic for a given widget and arguments, so tests can assert
// exact payloads and demos behave identically run to run.
type DemoSource struct{}

// NewDemoSource creates the demonstration data source.
func NewDemoSource() *DemoSource {
	return &DemoSource{}
}

// WidgetData returns the canned payload for the widget, echoing relevant
// invocation arguments into it.
func (s *DemoSource) WidgetData(_ context.Context, widget models.WidgetType, args map[string]any) (map[string]any, error) {
	switch widget {
	case models.WidgetPerformanceDashboard:
		period := stringArg(args, "period", "last_week")
		return map[string]any{
			"period":      period,
			"impressions": 48210,
			"clicks":      1327,
			"leads":       41,
			"top_ad":      "2021 Honda CR-V walkaround",
		}, nil
	case models.WidgetThemeSelector:
		return map[string]any{
			"themes": []any{
				map[string]any{"id": "seasonal_sales", "label": "Seasonal Sales Event"},
				map[string]any{"id": "educational", "label": "Educational"},
				map[string]any{"id": "new_arrivals", "label": "New Arrivals"},
			},
		}, nil
	case models.WidgetTopicSelector:
		return map[string]any{
			"theme": stringArg(args, "theme", "educational"),
			"topics": []any{
				map[string]any{"id": "financing_basics", "label": "Financing Basics"},
				map[string]any{"id": "trade_in_value", "label": "Getting the Most for Your Trade-In"},
				map[string]any{"id": "ev_ownership", "label": "What EV Ownership Really Costs"},
			},
		}, nil
	case models.WidgetAdPlan:
		plan := map[string]any{
			"theme":     stringArg(args, "theme", "seasonal_sales"),
			"ad_count":  3,
			"platforms": []any{"facebook", "instagram"},
		}
		if topics, ok := args["topics"]; ok {
			plan["topics"] = topics
		}
		return plan, nil
	case models.WidgetVehicleSelector:
		return map[string]any{
			"vehicles": []any{
				map[string]any{"id": "veh-1042", "label": "2021 Honda CR-V EX-L", "price": 27995},
				map[string]any{"id": "veh-1077", "label": "2022 Toyota RAV4 XLE", "price": 29450},
				map[string]any{"id": "veh-1103", "label": "2020 Ford F-150 Lariat", "price": 38900},
			},
		}, nil
	case models.WidgetScriptApproval:
		result := map[string]any{
			"scripts": []any{
				map[string]any{"id": "script-1", "vehicle_id": "veh-1042", "text": "This week only: the 2021 Honda CR-V EX-L, loaded and ready."},
				map[string]any{"id": "script-2", "vehicle_id": "veh-1077", "text": "Adventure-ready. The 2022 Toyota RAV4 XLE is waiting for you."},
			},
		}
		if ids, ok := args["vehicle_ids"]; ok {
			result["vehicle_ids"] = ids
		}
		return result, nil
	case models.WidgetGenerationProgress:
		return map[string]any{
			"job_id":   stringArg(args, "job_id", "job-demo-1"),
			"status":   "rendering",
			"progress": 60,
		}, nil
	case models.WidgetPublish:
		return map[string]any{
			"videos": []any{
				map[string]any{"id": "vid-1", "script_id": "script-1", "url": "https://cdn.example.com/demo/vid-1.mp4"},
				map[string]any{"id": "vid-2", "script_id": "script-2", "url": "https://cdn.example.com/demo/vid-2.mp4"},
			},
		}, nil
	case models.WidgetWrapUp:
		return map[string]any{
			"published_count": 2,
			"next_check_in":   "next Monday",
		}, nil
	case models.WidgetRecommendations:
		return map[string]any{
			"recommendations": []any{
				map[string]any{"id": "rec-1", "text": "Feature trucks more often; they outperform sedans 2:1 in your market."},
				map[string]any{"id": "rec-2", "text": "Post educational content midweek for better reach."},
			},
		}, nil
	case models.WidgetGuidanceRules:
		return map[string]any{
			"rules": []any{
				map[string]any{"id": "rule-1", "text": "Always mention the dealership name in the first five seconds."},
				map[string]any{"id": "rule-2", "text": "Never quote monthly payments without the disclaimer."},
			},
		}, nil
	case models.WidgetAvatarCapture:
		return map[string]any{
			"instructions": "Record a 30 second clip facing the camera in good lighting.",
			"max_duration": 30,
		}, nil
	case models.WidgetBilling:
		return map[string]any{
			"plan":          "growth",
			"renews_on":     "2026-10-01",
			"videos_used":   14,
			"videos_quota":  40,
			"payment_state": "current",
		}, nil
	default:
		return map[string]any{}, nil
	}
}

func stringArg(args map[string]any, key, fallback string) string {
	if args == nil {
		return fallback
	}
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
