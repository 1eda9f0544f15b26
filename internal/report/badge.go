package report

// Badge maps an overall score to its coarse letter label. Thresholds are
// policy constants: monotonic and total over [0,100].
func Badge(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
