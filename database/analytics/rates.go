package analytics

import "time"

// Period kinds for performance summaries
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Rates holds the ratios derived from raw funnel counts
type Rates struct {
	CTR            float64
	ConversionRate float64
}

// ComputeRates derives click-through and conversion rates from funnel
// counts. Zero impressions yields zero rates, never a division error.
func ComputeRates(impressions, clicks, conversions int64) Rates {
	if impressions <= 0 {
		return Rates{}
	}
	return Rates{
		CTR:            float64(clicks) / float64(impressions),
		ConversionRate: float64(conversions) / float64(impressions),
	}
}

// ComputeOrderValueLift compares recommendation-attributed revenue to the
// baseline revenue of the same window. Zero baseline yields zero lift.
func ComputeOrderValueLift(recommendedRevenue, baselineRevenue float64) float64 {
	if baselineRevenue <= 0 {
		return 0
	}
	return recommendedRevenue / baselineRevenue
}

// PreviousPeriodStart returns the start of the period immediately before
// the one containing at. Aggregation runs pass it so a period closed
// since the last scheduled tick still gets a final pass over its full
// window.
func PreviousPeriodStart(periodKind string, at time.Time) time.Time {
	start, _ := PeriodWindow(periodKind, at)
	prev, _ := PeriodWindow(periodKind, start.Add(-time.Hour))
	return prev
}

// PeriodWindow returns [start, end) for the period containing or starting
// at the given date. Weekly periods start on Monday; monthly on the 1st.
func PeriodWindow(periodKind string, periodStart time.Time) (time.Time, time.Time) {
	start := periodStart.Truncate(24 * time.Hour)

	switch periodKind {
	case PeriodWeekly:
		// Roll back to Monday
		weekday := int(start.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = start.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return start, start.AddDate(0, 0, 1)
	}
}
