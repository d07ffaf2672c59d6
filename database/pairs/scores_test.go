package pairs

import "testing"

func TestDeriveScores(t *testing.T) {
	tests := []struct {
		name          string
		timesTogether int64
		ordersWithA   int64
		ordersWithB   int64
		totalOrders   int64
		expConfidence float64
		expSupport    float64
		expLift       float64
	}{
		{
			// Orders [{A,B}, {A,B}, {A,C}]: pair (A,B) seen twice,
			// A in 3 orders, B in 2 of 3 total
			name:          "Worked Example Pair A-B",
			timesTogether: 2,
			ordersWithA:   3,
			ordersWithB:   2,
			totalOrders:   3,
			expConfidence: 2.0 / 3.0,
			expSupport:    2.0 / 3.0,
			expLift:       (2.0 / 3.0) / (2.0 / 3.0),
		},
		{
			name:          "Worked Example Pair A-C",
			timesTogether: 1,
			ordersWithA:   3,
			ordersWithB:   1,
			totalOrders:   3,
			expConfidence: 1.0 / 3.0,
			expSupport:    1.0 / 3.0,
			expLift:       (1.0 / 3.0) / (1.0 / 3.0),
		},
		{
			name:          "No Orders With A",
			timesTogether: 1,
			ordersWithA:   0,
			ordersWithB:   2,
			totalOrders:   5,
			expConfidence: 0,
			expSupport:    0.2,
			expLift:       1.0, // neutral, never an error
		},
		{
			name:          "Zero Total Orders",
			timesTogether: 0,
			ordersWithA:   0,
			ordersWithB:   0,
			totalOrders:   0,
			expConfidence: 0,
			expSupport:    0,
			expLift:       1.0,
		},
		{
			name:          "Perfectly Independent",
			timesTogether: 1,
			ordersWithA:   2,
			ordersWithB:   5,
			totalOrders:   10,
			expConfidence: 0.5,
			expSupport:    0.1,
			expLift:       1.0, // 0.5 / (5/10)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confidence, support, lift := DeriveScores(tt.timesTogether, tt.ordersWithA, tt.ordersWithB, tt.totalOrders)
			if !closeTo(confidence, tt.expConfidence) {
				t.Errorf("confidence: expected %f, got %f", tt.expConfidence, confidence)
			}
			if !closeTo(support, tt.expSupport) {
				t.Errorf("support: expected %f, got %f", tt.expSupport, support)
			}
			if !closeTo(lift, tt.expLift) {
				t.Errorf("lift: expected %f, got %f", tt.expLift, lift)
			}
			if confidence < 0 || confidence > 1 {
				t.Errorf("confidence %f out of [0,1]", confidence)
			}
			if support < 0 || support > 1 {
				t.Errorf("support %f out of [0,1]", support)
			}
			if lift < 0 {
				t.Errorf("lift %f below 0", lift)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	a, b := Canonicalize(5, 3)
	if a != 3 || b != 5 {
		t.Errorf("expected (3, 5), got (%d, %d)", a, b)
	}

	a, b = Canonicalize(3, 5)
	if a != 3 || b != 5 {
		t.Errorf("expected (3, 5) for pre-ordered input, got (%d, %d)", a, b)
	}
}

func TestDistinctSorted(t *testing.T) {
	ids := distinctSorted([]int64{7, 3, 7, 1, 3})
	if len(ids) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(ids))
	}
	for i, want := range []int64{1, 3, 7} {
		if ids[i] != want {
			t.Errorf("position %d: expected %d, got %d", i, want, ids[i])
		}
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
