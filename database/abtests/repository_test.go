package abtests

import (
	"testing"

	models "qrmenu-reco/database/models_pkg"
)

func TestAttributable(t *testing.T) {
	running := &models.ABTestConfig{ID: 7, Status: StatusRunning}

	tests := []struct {
		name     string
		test     *models.ABTestConfig
		group    string
		testID   int64
		expected bool
	}{
		{
			name:     "Control Of Running Test",
			test:     running,
			group:    GroupControl,
			testID:   7,
			expected: true,
		},
		{
			name:     "Variant Of Running Test",
			test:     running,
			group:    GroupVariant,
			testID:   7,
			expected: true,
		},
		{
			// A session bucketed under a test that has since completed
			// must not inflate the current test's counters
			name:     "Stamped By Earlier Test",
			test:     running,
			group:    GroupVariant,
			testID:   3,
			expected: false,
		},
		{
			name:     "No Running Test",
			test:     nil,
			group:    GroupVariant,
			testID:   7,
			expected: false,
		},
		{
			name:     "Never Assigned",
			test:     running,
			group:    GroupVariant,
			testID:   0,
			expected: false,
		},
		{
			name:     "Unknown Group",
			test:     running,
			group:    "holdout",
			testID:   7,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Attributable(tt.test, tt.group, tt.testID); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSignificance(t *testing.T) {
	if z := Significance(0, 0); z != 0 {
		t.Errorf("no conversions: expected 0, got %f", z)
	}
	if z := Significance(10, 10); z != 0 {
		t.Errorf("even split: expected 0, got %f", z)
	}
	// (12 - 4) / sqrt(16)
	if z := Significance(4, 12); z != 2.0 {
		t.Errorf("expected 2.0, got %f", z)
	}
	if z := Significance(12, 4); z != -2.0 {
		t.Errorf("expected -2.0, got %f", z)
	}
}
