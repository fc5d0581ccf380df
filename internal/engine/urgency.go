package engine

// urgencyMultiplier weights a signal by how soon the market resolves. A
// signal on a market closing within hours is immediately actionable; the
// same signal on a market closing in two months carries execution and drift
// risk. A market already past its end date has no action value.
func urgencyMultiplier(hoursToResolution float64) float64 {
	switch {
	case hoursToResolution <= 0:
		return 1.0
	case hoursToResolution < 24:
		return 1.5
	case hoursToResolution < 72:
		return 1.25
	case hoursToResolution < 168:
		return 1.1
	default:
		return 1.0
	}
}
