package app

import "testing"

func TestMarshalContext(t *testing.T) {
	tests := []struct {
		name     string
		in       map[string]interface{}
		expected string
	}{
		{
			// Impressions and clicks are usually submitted without a
			// context map; the jsonb column still needs a valid document
			name:     "Nil Map",
			in:       nil,
			expected: "{}",
		},
		{
			name:     "Empty Map",
			in:       map[string]interface{}{},
			expected: "{}",
		},
		{
			name:     "With Values",
			in:       map[string]interface{}{"position": 2},
			expected: `{"position":2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalContext(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == "" {
				t.Error("context must never encode as an empty string")
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
