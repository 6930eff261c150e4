package resolve

// RoundTo5 rounds a price up to the nearest amount ending in 5 or 0.
// High-end list prices are presented in 5-euro steps; rounding always goes
// up so a converted price never undercuts the margin.
func RoundTo5(v float64) float64 {
	last := int(v) % 10
	switch {
	case last == 0 || last == 5:
		return v
	case last < 5:
		return float64(int(v) + 5 - last)
	default:
		return float64(int(v) + 10 - last)
	}
}
