package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/marketsentry/marketsentry/internal/classify"
)

// detectStructuring flags a wallet hammering the same market with repeated
// trades in a short window: splitting a large position into many small
// orders to avoid the attention one big trade would draw.
func (e *Engine) detectStructuring(ctx context.Context, t Trade, _ classify.Category) (*Alert, error) {
	since := e.now().Add(-e.cfg.HammerLookback).Unix()
	activity, err := e.store.GetPairActivity(ctx, t.Wallet, t.ConditionID, since)
	if err != nil {
		return nil, fmt.Errorf("pair activity: %w", err)
	}

	// The incoming trade is not persisted yet; count it in.
	tradeCount := activity.TradeCount + 1
	totalUSD := activity.TotalValueUSD + t.ValueUSD

	if tradeCount < e.cfg.HammerMinTrades || totalUSD < e.cfg.HammerMinVolumeUSD {
		return nil, nil
	}

	var span time.Duration
	if activity.TradeCount > 0 {
		span = t.Timestamp.Sub(time.Unix(activity.FirstTradeTS, 0))
		if span < 0 {
			span = 0
		}
	}

	confidence := 0.5
	switch {
	case tradeCount >= 10:
		confidence += 0.2
	case tradeCount >= 7:
		confidence += 0.15
	case tradeCount >= 5:
		confidence += 0.1
	}
	switch {
	case totalUSD > 10000:
		confidence += 0.15
	case totalUSD > 5000:
		confidence += 0.1
	}
	// Faster execution looks automated and deliberate.
	switch {
	case span < 10*time.Minute:
		confidence += 0.15
	case span < 30*time.Minute:
		confidence += 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}

	if confidence < 0.60 {
		return nil, nil
	}

	return &Alert{
		Kind:        KindStructuring,
		Severity:    SeverityHigh,
		Wallet:      t.Wallet,
		ConditionID: t.ConditionID,
		Title:       "Order structuring detected",
		Description: fmt.Sprintf("Wallet %s placed %d trades totaling $%.0f on the same market in %.0f minutes.",
			shortWallet(t.Wallet), tradeCount, totalUSD, span.Minutes()),
		Confidence: confidence,
		SupportingData: map[string]interface{}{
			"trade_count":   tradeCount,
			"total_usd":     totalUSD,
			"span_minutes":  span.Minutes(),
			"lookback_mins": e.cfg.HammerLookback.Minutes(),
		},
	}, nil
}
