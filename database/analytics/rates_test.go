package analytics

import (
	"testing"
	"time"
)

func TestComputeRates(t *testing.T) {
	tests := []struct {
		name        string
		impressions int64
		clicks      int64
		conversions int64
		expCTR      float64
		expConvRate float64
	}{
		{
			name:        "Typical Funnel",
			impressions: 100,
			clicks:      20,
			conversions: 5,
			expCTR:      0.20,
			expConvRate: 0.05,
		},
		{
			name:        "No Impressions",
			impressions: 0,
			clicks:      0,
			conversions: 0,
			expCTR:      0,
			expConvRate: 0,
		},
		{
			// Clicks without impressions can happen when event delivery
			// is lossy; rates still must not divide by zero
			name:        "Clicks Without Impressions",
			impressions: 0,
			clicks:      3,
			conversions: 1,
			expCTR:      0,
			expConvRate: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := ComputeRates(tt.impressions, tt.clicks, tt.conversions)
			if rates.CTR != tt.expCTR {
				t.Errorf("CTR: expected %f, got %f", tt.expCTR, rates.CTR)
			}
			if rates.ConversionRate != tt.expConvRate {
				t.Errorf("ConversionRate: expected %f, got %f", tt.expConvRate, rates.ConversionRate)
			}
		})
	}
}

func TestComputeOrderValueLift(t *testing.T) {
	if lift := ComputeOrderValueLift(50, 200); lift != 0.25 {
		t.Errorf("expected 0.25, got %f", lift)
	}
	if lift := ComputeOrderValueLift(50, 0); lift != 0 {
		t.Errorf("expected 0 for zero baseline, got %f", lift)
	}
}

func TestPeriodWindow(t *testing.T) {
	// Wednesday 2025-06-11
	day := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

	start, end := PeriodWindow(PeriodDaily, day)
	if !start.Equal(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("daily start: got %v", start)
	}
	if !end.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("daily end: got %v", end)
	}

	start, end = PeriodWindow(PeriodWeekly, day)
	if start.Weekday() != time.Monday {
		t.Errorf("weekly start should be Monday, got %v", start.Weekday())
	}
	if !end.Equal(start.AddDate(0, 0, 7)) {
		t.Errorf("weekly end: got %v", end)
	}

	start, end = PeriodWindow(PeriodMonthly, day)
	if start.Day() != 1 || start.Month() != time.June {
		t.Errorf("monthly start: got %v", start)
	}
	if !end.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monthly end: got %v", end)
	}
}

func TestPreviousPeriodStart(t *testing.T) {
	tests := []struct {
		name       string
		periodKind string
		at         time.Time
		expStart   time.Time
	}{
		{
			// A run ten minutes past midnight must still be able to fold
			// events from late yesterday into yesterday's summary
			name:       "Daily Just After Midnight",
			periodKind: PeriodDaily,
			at:         time.Date(2025, 6, 12, 0, 10, 0, 0, time.UTC),
			expStart:   time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			// Monday just after the weekly boundary points at last Monday
			name:       "Weekly On Monday Morning",
			periodKind: PeriodWeekly,
			at:         time.Date(2025, 6, 16, 0, 10, 0, 0, time.UTC),
			expStart:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "Monthly On The First",
			periodKind: PeriodMonthly,
			at:         time.Date(2025, 7, 1, 0, 10, 0, 0, time.UTC),
			expStart:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "Mid Period",
			periodKind: PeriodDaily,
			at:         time.Date(2025, 6, 12, 15, 30, 0, 0, time.UTC),
			expStart:   time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := PreviousPeriodStart(tt.periodKind, tt.at)
			if !prev.Equal(tt.expStart) {
				t.Errorf("expected %v, got %v", tt.expStart, prev)
			}

			// The previous window must end exactly at the current one's
			// start, so an event right before the boundary is covered
			_, prevEnd := PeriodWindow(tt.periodKind, prev)
			curStart, _ := PeriodWindow(tt.periodKind, tt.at)
			if !prevEnd.Equal(curStart) {
				t.Errorf("previous window ends at %v, current starts at %v", prevEnd, curStart)
			}
			boundaryEvent := curStart.Add(-time.Minute)
			if boundaryEvent.Before(prev) || !boundaryEvent.Before(prevEnd) {
				t.Errorf("event at %v not covered by [%v, %v)", boundaryEvent, prev, prevEnd)
			}
		})
	}
}
