package engine

import "fmt"

// RecommendPosition converts a confidence estimate and a market price into a
// half-Kelly stake. Half rather than full Kelly because the confidence is a
// heuristic estimate, not a calibrated probability; halving trades growth
// rate for much lower variance when the estimate is wrong.
func (e *Engine) RecommendPosition(confidence, price, bankroll float64) PositionRecommendation {
	rec := PositionRecommendation{BankrollUSD: bankroll}

	if price <= 0 || price >= 1 || confidence <= 0 {
		rec.Explanation = "Invalid price or confidence - no position"
		return rec
	}

	rec.EdgePct = (confidence - price) * 100

	b := 1/price - 1
	if b <= 0 {
		rec.Explanation = "No payout odds at this price - no position"
		return rec
	}

	kelly := (confidence*b - (1 - confidence)) / b
	rec.KellyFraction = kelly

	halfKelly := kelly / 2
	if halfKelly < 0 {
		halfKelly = 0
	}
	rec.HalfKelly = halfKelly

	capped := halfKelly
	if capped > e.cfg.MaxPositionPct {
		capped = e.cfg.MaxPositionPct
	}
	rec.CappedFraction = capped
	rec.RecommendedUSD = bankroll * capped

	switch {
	case halfKelly <= 0:
		rec.Explanation = "No betting edge at current price - skip"
	case capped < halfKelly:
		rec.Explanation = fmt.Sprintf("Half-Kelly wants %.1f%% of bankroll, capped at %.1f%% by position policy",
			halfKelly*100, e.cfg.MaxPositionPct*100)
	case rec.EdgePct >= 20:
		rec.Explanation = fmt.Sprintf("Strong edge (%.0f%%) - half-Kelly stake of %.1f%% of bankroll",
			rec.EdgePct, capped*100)
	default:
		rec.Explanation = fmt.Sprintf("Half-Kelly stake of %.1f%% of bankroll", capped*100)
	}

	return rec
}
