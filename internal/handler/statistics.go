package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger-backend/internal/analytics"
	"shopledger-backend/internal/server/authctx"
	"shopledger-backend/internal/service"
)

type StatisticsHandler struct {
	Service *service.StatisticsService
}

func (h StatisticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/statistics", h.report)
}

func (h StatisticsHandler) report(w http.ResponseWriter, r *http.Request) {
	q := parseRangeQuery(r)
	rep, err := h.Service.Report(r.Context(), authctx.FromContext(r.Context()), q.From, q.To, q.ShopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse(rep))
}

func reportResponse(rep analytics.Report) map[string]any {
	advice := make([]map[string]any, 0, len(rep.Advice))
	for _, a := range rep.Advice {
		advice = append(advice, map[string]any{
			"metric":  a.Metric,
			"level":   string(a.Level),
			"value":   round2(a.Value),
			"message": a.Message,
		})
	}
	return map[string]any{
		"records": rep.Records,
		"kpis": map[string]any{
			"gmroi":              round2(rep.KPIs.GMROI),
			"dailyRevenueGrowth": round2(rep.KPIs.DailyRevenueGrowth),
			"inventoryTurnover":  round2(rep.KPIs.InventoryTurnover),
			"overallMargin":      round2(rep.KPIs.OverallMargin),
		},
		"main":   sectionResponse(rep.Main, rep.MainBaseline),
		"order":  sectionResponse(rep.Order, rep.OrderBaseline),
		"advice": advice,
	}
}

func sectionResponse(full, baseline analytics.SectionStats) map[string]any {
	field := func(f, b analytics.Stats) map[string]any {
		return map[string]any{
			"min":       round2(f.Min),
			"max":       round2(f.Max),
			"avg":       round2(f.Avg),
			"baseline":  map[string]any{"min": round2(b.Min), "max": round2(b.Max), "avg": round2(b.Avg)},
			"improving": analytics.Improving(f, b),
		}
	}
	return map[string]any{
		"revenueWithMargin":    field(full.RevenueWithMargin, baseline.RevenueWithMargin),
		"revenueWithoutMargin": field(full.RevenueWithoutMargin, baseline.RevenueWithoutMargin),
		"margin":               field(full.Margin, baseline.Margin),
		"stock":                field(full.Stock, baseline.Stock),
	}
}
