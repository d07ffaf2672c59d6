package pairs

// DeriveScores computes the derived pair scores from source counters.
//
//	confidence = timesTogether / ordersWithA
//	support    = timesTogether / totalOrders
//	lift       = confidence / (ordersWithB / totalOrders)
//
// A zero denominator never errors: confidence and support default to 0
// and lift stays at its neutral 1.0. timesTogether can never exceed the
// order count of either constituent item, so confidence is ≤ 1 by
// construction.
func DeriveScores(timesTogether, ordersWithA, ordersWithB, totalOrders int64) (confidence, support, lift float64) {
	lift = 1.0

	if ordersWithA > 0 {
		confidence = float64(timesTogether) / float64(ordersWithA)
	}
	if totalOrders > 0 {
		support = float64(timesTogether) / float64(totalOrders)
	}
	if ordersWithB > 0 && totalOrders > 0 && ordersWithA > 0 {
		expected := float64(ordersWithB) / float64(totalOrders)
		lift = confidence / expected
	}
	return confidence, support, lift
}
