package analytics

import (
	"fmt"
	"math"

	"shopledger-backend/internal/domain"
)

// Stats summarizes one field over a sequence, in currency units.
type Stats struct {
	Min float64
	Max float64
	Avg float64
}

// Summarize computes min/max/avg of cent values and reports them in currency units.
// An empty input yields zero stats.
func Summarize(cents []int64) Stats {
	if len(cents) == 0 {
		return Stats{}
	}
	lo, hi, sum := int64(math.MaxInt64), int64(math.MinInt64), 0.0
	for _, c := range cents {
		lo = min(lo, c)
		hi = max(hi, c)
		sum += float64(c)
	}
	return Stats{
		Min: float64(lo) / 100,
		Max: float64(hi) / 100,
		Avg: sum / float64(len(cents)) / 100,
	}
}

// Improving reports whether the full-period average holds up against the baseline that leaves
// out the latest day.
func Improving(full, baseline Stats) bool {
	return full.Avg >= baseline.Avg
}

// SectionStats covers one stock section (main or order).
type SectionStats struct {
	RevenueWithMargin    Stats
	RevenueWithoutMargin Stats
	Margin               Stats
	Stock                Stats
}

type section struct {
	with, without, stock func(domain.DailyRecord) int64
}

var (
	mainSection = section{
		with:    func(r domain.DailyRecord) int64 { return r.RevenueMainWithMargin },
		without: func(r domain.DailyRecord) int64 { return r.RevenueMainWithoutMargin },
		stock:   func(r domain.DailyRecord) int64 { return r.MainStockValue },
	}
	orderSection = section{
		with:    func(r domain.DailyRecord) int64 { return r.RevenueOrderWithMargin },
		without: func(r domain.DailyRecord) int64 { return r.RevenueOrderWithoutMargin },
		stock:   func(r domain.DailyRecord) int64 { return r.OrderStockValue },
	}
)

func (s section) summarize(records []domain.DailyRecord) SectionStats {
	with := make([]int64, len(records))
	without := make([]int64, len(records))
	margin := make([]int64, len(records))
	stock := make([]int64, len(records))
	for i, r := range records {
		with[i] = s.with(r)
		without[i] = s.without(r)
		margin[i] = with[i] - without[i]
		stock[i] = s.stock(r)
	}
	return SectionStats{
		RevenueWithMargin:    Summarize(with),
		RevenueWithoutMargin: Summarize(without),
		Margin:               Summarize(margin),
		Stock:                Summarize(stock),
	}
}

// Report is the full statistics view of a record sequence. The baseline sections are computed
// over the same records minus the last one.
type Report struct {
	Records       int
	KPIs          KPIs
	Main          SectionStats
	Order         SectionStats
	MainBaseline  SectionStats
	OrderBaseline SectionStats
	Advice        []Advice
}

func Build(records []domain.DailyRecord) Report {
	var baseline []domain.DailyRecord
	if len(records) > 0 {
		baseline = records[:len(records)-1]
	}
	kpis := ComputeKPIs(records)
	return Report{
		Records:       len(records),
		KPIs:          kpis,
		Main:          mainSection.summarize(records),
		Order:         orderSection.summarize(records),
		MainBaseline:  mainSection.summarize(baseline),
		OrderBaseline: orderSection.summarize(baseline),
		Advice:        Advise(kpis),
	}
}

type Level string

const (
	LevelCritical        Level = "critical"
	LevelWarning         Level = "warning"
	LevelGood            Level = "good"
	LevelExcellent       Level = "excellent"
	LevelVolatile        Level = "volatile"
	LevelStable          Level = "stable"
	LevelDeclining       Level = "declining"
	LevelHigh            Level = "high"
	LevelAverage         Level = "average"
	LevelPoor            Level = "poor"
	LevelIndustryAverage Level = "industry_average"
)

type Advice struct {
	Metric  string
	Level   Level
	Value   float64
	Message string
}

var levelTitles = map[Level]string{
	LevelCritical:        "Critical",
	LevelWarning:         "Warning",
	LevelGood:            "Good",
	LevelExcellent:       "Excellent",
	LevelVolatile:        "Volatile",
	LevelStable:          "Stable",
	LevelDeclining:       "Declining",
	LevelHigh:            "High",
	LevelAverage:         "Average",
	LevelPoor:            "Poor",
	LevelIndustryAverage: "Industry Average",
}

func GMROILevel(v float64) Level {
	switch {
	case v < 1.0:
		return LevelCritical
	case v < 2.0:
		return LevelWarning
	case v < 3.0:
		return LevelGood
	default:
		return LevelExcellent
	}
}

func GrowthLevel(v float64) Level {
	switch {
	case v > 20 || v < -20:
		return LevelVolatile
	case v >= 5:
		return LevelExcellent
	case v >= 2:
		return LevelGood
	case v >= -2:
		return LevelStable
	case v >= -5:
		return LevelWarning
	default:
		return LevelDeclining
	}
}

func TurnoverLevel(v float64) Level {
	switch {
	case v > 12:
		return LevelHigh
	case v >= 8:
		return LevelExcellent
	case v >= 5:
		return LevelGood
	case v >= 3:
		return LevelAverage
	default:
		return LevelPoor
	}
}

func MarginLevel(v float64) Level {
	switch {
	case v < 25:
		return LevelWarning
	case v < 30.9:
		return LevelIndustryAverage
	case v < 50:
		return LevelGood
	default:
		return LevelExcellent
	}
}

var gmroiHints = map[Level]string{
	LevelCritical:  " Losing money on inventory.",
	LevelWarning:   " Consider markdown strategies.",
	LevelGood:      " Maintain current strategies.",
	LevelExcellent: " Scale successful practices.",
}

// Advise grades each KPI against fixed retail thresholds.
func Advise(k KPIs) []Advice {
	gl := GMROILevel(k.GMROI)
	return []Advice{
		advice("GMROI", gl, k.GMROI, "", gmroiHints[gl]),
		advice("Daily Revenue Growth", GrowthLevel(k.DailyRevenueGrowth), k.DailyRevenueGrowth, "%", ""),
		advice("Inventory Turnover", TurnoverLevel(k.InventoryTurnover), k.InventoryTurnover, "", ""),
		advice("Overall Margin", MarginLevel(k.OverallMargin), k.OverallMargin, "%", ""),
	}
}

func advice(metric string, l Level, v float64, unit, hint string) Advice {
	return Advice{
		Metric:  metric,
		Level:   l,
		Value:   v,
		Message: fmt.Sprintf("%s: %s (Current: %.2f%s).%s", metric, levelTitles[l], v, unit, hint),
	}
}
