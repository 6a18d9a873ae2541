package services

// ComputeFee returns the platform's cut of amount at pct percent,
// floored. Both values are integers; no floating point is used anywhere
// in fee or split computation.
func ComputeFee(amount, pct int) int {
	return amount * pct / 100
}
