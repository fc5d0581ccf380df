package engine

import (
	"context"
	"fmt"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/storage"
)

// detectProvenWinner is the feedback loop: wallets whose past alerts later
// proved correct get elevated trust on their next significant trade.
func (e *Engine) detectProvenWinner(ctx context.Context, t Trade, _ classify.Category) (*Alert, error) {
	if t.ValueUSD < minProvenWinnerUSD {
		return nil, nil
	}

	profile, err := e.store.GetWalletProfile(ctx, t.Wallet)
	if err != nil {
		return nil, fmt.Errorf("get wallet profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}
	// A wallet demoted to the ignore tier has a proven bad track record.
	if profile.FollowPriority == storage.TierIgnore {
		return nil, nil
	}

	if profile.SignalsGenerated < 3 || profile.SignalAccuracy < 0.60 {
		return nil, nil
	}

	confidence := profile.SignalAccuracy
	if profile.FollowPriority == storage.TierPriority {
		confidence *= 1.15
		if confidence > 0.95 {
			confidence = 0.95
		}
	}

	severity := SeverityMedium
	if confidence >= 0.75 {
		severity = SeverityHigh
	}

	return &Alert{
		Kind:        KindProvenWinner,
		Severity:    severity,
		Wallet:      t.Wallet,
		ConditionID: t.ConditionID,
		Title:       "Proven winner trading again",
		Description: fmt.Sprintf("Wallet %s has %.0f%% signal accuracy over %d tracked signals and just placed $%.0f.",
			shortWallet(t.Wallet), profile.SignalAccuracy*100, profile.SignalsGenerated, t.ValueUSD),
		Confidence: confidence,
		SupportingData: map[string]interface{}{
			"signal_accuracy":   profile.SignalAccuracy,
			"signals_generated": profile.SignalsGenerated,
			"follow_priority":   profile.FollowPriority,
		},
	}, nil
}
