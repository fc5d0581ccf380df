package engine

import "fmt"

// compositeAlert synthesizes one MEGA_SIGNAL from two or more triggered
// detectors using a probabilistic OR over their adjusted confidences:
// 1 - product(1 - c_i). This treats the detectors as statistically
// independent, which is a known approximation (fresh wallet and unusual
// sizing both correlate with large trade value).
func (e *Engine) compositeAlert(t Trade, triggered []*Alert, hoursToRes float64) *Alert {
	missProb := 1.0
	kinds := make([]string, 0, len(triggered))
	confidences := make(map[string]interface{}, len(triggered))
	for _, a := range triggered {
		missProb *= 1 - a.AdjustedConfidence
		kinds = append(kinds, string(a.Kind))
		confidences[string(a.Kind)] = a.AdjustedConfidence
	}
	combined := clampConfidence(1 - missProb)

	severity := SeverityMedium
	switch {
	case combined >= 0.95:
		severity = SeverityCritical
	case combined >= 0.85:
		severity = SeverityHigh
	}

	return &Alert{
		Kind:        KindMegaSignal,
		Severity:    severity,
		Wallet:      t.Wallet,
		ConditionID: t.ConditionID,
		Title:       fmt.Sprintf("Combined signal: %d detectors triggered", len(triggered)),
		Description: fmt.Sprintf("Wallet %s tripped %d independent detectors on the same $%.0f trade.",
			shortWallet(t.Wallet), len(triggered), t.ValueUSD),
		Confidence:         combined,
		AdjustedConfidence: combined,
		HoursToResolution:  hoursToRes,
		UrgencyMultiplier:  1.0, // contributors are already urgency-weighted
		SupportingData: map[string]interface{}{
			"detectors":   kinds,
			"confidences": confidences,
			"combined":    combined,
		},
	}
}
