// Package analytics derives shop KPIs from a sequence of daily records. Every function here is
// pure: the result depends only on the records passed in, which callers supply already scoped
// (one shop, or all shops for a CEO) and ordered by date. Sums over records are taken in float64
// so that long ranges of large amounts cannot overflow.
package analytics

import (
	"shopledger-backend/internal/domain"
)

// DefaultGrowthWindow is the number of preceding days the growth baseline averages over.
const DefaultGrowthWindow = 7

func stocked(records []domain.DailyRecord) []domain.DailyRecord {
	out := make([]domain.DailyRecord, 0, len(records))
	for _, r := range records {
		if r.StockValue() > 0 {
			out = append(out, r)
		}
	}
	return out
}

func avgStock(records []domain.DailyRecord) float64 {
	var total float64
	for _, r := range records {
		total += float64(r.StockValue())
	}
	return total / float64(len(records))
}

// GMROI is gross margin over average inventory value. Records without stock are left out of
// both the margin sum and the inventory average; with no stocked record it is 0.
func GMROI(records []domain.DailyRecord) float64 {
	valid := stocked(records)
	if len(valid) == 0 {
		return 0
	}
	var with, without float64
	for _, r := range valid {
		with += float64(r.RevenueWithMargin())
		without += float64(r.RevenueWithoutMargin())
	}
	return (with - without) / avgStock(valid)
}

// DailyRevenueGrowth is the mean percentage change of each day's revenue against the average of
// the window days before it. Days whose baseline average is not positive contribute nothing.
func DailyRevenueGrowth(records []domain.DailyRecord, window int) float64 {
	if window <= 0 {
		window = DefaultGrowthWindow
	}
	if len(records) < window+1 {
		return 0
	}
	var (
		sum     float64
		samples int
	)
	for i := window; i < len(records); i++ {
		var prev float64
		for _, r := range records[i-window : i] {
			prev += float64(r.RevenueWithMargin())
		}
		baseline := prev / float64(window)
		if baseline <= 0 {
			continue
		}
		today := float64(records[i].RevenueWithMargin())
		sum += (today - baseline) / baseline * 100
		samples++
	}
	if samples == 0 {
		return 0
	}
	return sum / float64(samples)
}

// InventoryTurnover annualizes average daily cost of goods sold over average inventory value,
// using the same stocked-records rule as GMROI.
func InventoryTurnover(records []domain.DailyRecord) float64 {
	valid := stocked(records)
	if len(valid) == 0 {
		return 0
	}
	var without float64
	for _, r := range valid {
		without += float64(r.RevenueWithoutMargin())
	}
	daily := without / float64(len(valid))
	return daily / avgStock(valid) * 365
}

// OverallMargin is the share of revenue that is margin, in percent; 0 without revenue.
func OverallMargin(records []domain.DailyRecord) float64 {
	var with, without float64
	for _, r := range records {
		with += float64(r.RevenueWithMargin())
		without += float64(r.RevenueWithoutMargin())
	}
	if with == 0 {
		return 0
	}
	return (with - without) / with * 100
}

type KPIs struct {
	GMROI              float64
	DailyRevenueGrowth float64
	InventoryTurnover  float64
	OverallMargin      float64
}

func ComputeKPIs(records []domain.DailyRecord) KPIs {
	return KPIs{
		GMROI:              GMROI(records),
		DailyRevenueGrowth: DailyRevenueGrowth(records, DefaultGrowthWindow),
		InventoryTurnover:  InventoryTurnover(records),
		OverallMargin:      OverallMargin(records),
	}
}
