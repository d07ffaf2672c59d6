package helpers

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "0.00"},
		{4.5, "4.50"},
		{999.99, "999.99"},
		{1234567.5, "1,234,567.50"},
		{1.999, "2.00"},
		{-25.5, "-25.50"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.amount); got != tt.expected {
			t.Errorf("FormatMoney(%f): expected %s, got %s", tt.amount, tt.expected, got)
		}
	}
}
