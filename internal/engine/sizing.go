package engine

import (
	"context"
	"fmt"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/storage"
)

// detectUnusualSizing flags trades that are statistical outliers against the
// market's own trailing-week baseline. Requires at least 10 trades in the
// window to have a meaningful baseline at all.
func (e *Engine) detectUnusualSizing(ctx context.Context, t Trade, _ classify.Category) (*Alert, error) {
	stats, err := e.marketBaseline(ctx, t.ConditionID)
	if err != nil {
		return nil, fmt.Errorf("market baseline: %w", err)
	}

	if stats.TradeCount < 10 || stats.AvgValueUSD <= 0 {
		return nil, nil
	}

	multiplier := t.ValueUSD / stats.AvgValueUSD
	if multiplier < e.cfg.UnusualSizingMultiplier {
		return nil, nil
	}

	confidence := 0.5
	switch {
	case multiplier >= 10:
		confidence += 0.3
	case multiplier >= 5:
		confidence += 0.2
	case multiplier >= 3:
		confidence += 0.1
	}

	var sigma float64
	if stats.StddevValueUSD > 0 {
		sigma = (t.ValueUSD - stats.AvgValueUSD) / stats.StddevValueUSD
		switch {
		case sigma >= 5:
			confidence += 0.2
		case sigma >= 3:
			confidence += 0.15
		}
	}

	// A baseline built on more trades is more trustworthy.
	switch {
	case stats.TradeCount >= 100:
		confidence += 0.1
	case stats.TradeCount >= 50:
		confidence += 0.05
	}
	if confidence > 0.90 {
		confidence = 0.90
	}

	if confidence < 0.60 {
		return nil, nil
	}

	severity := SeverityMedium
	if multiplier >= 5 {
		severity = SeverityHigh
	}

	return &Alert{
		Kind:        KindWhaleAnomaly,
		Severity:    severity,
		Wallet:      t.Wallet,
		ConditionID: t.ConditionID,
		Title:       "Unusual trade size for market",
		Description: fmt.Sprintf("Trade of $%.0f is %.1fx the average trade size ($%.0f) for this market. Possible whale or insider.",
			t.ValueUSD, multiplier, stats.AvgValueUSD),
		Confidence: confidence,
		SupportingData: map[string]interface{}{
			"multiplier":       multiplier,
			"avg_trade_usd":    stats.AvgValueUSD,
			"stddev_trade_usd": stats.StddevValueUSD,
			"sigma_distance":   sigma,
			"baseline_trades":  stats.TradeCount,
		},
	}, nil
}

// marketBaseline returns the market's trailing-week trade-size baseline,
// served from the TTL cache when possible.
func (e *Engine) marketBaseline(ctx context.Context, conditionID string) (*storage.TradeStats, error) {
	if stats, ok := e.marketStats.Get(conditionID); ok {
		metrics.RecordCacheLookup("market_stats", true)
		return &stats, nil
	}
	metrics.RecordCacheLookup("market_stats", false)

	since := e.now().Add(-statsWindow).Unix()
	stats, err := e.store.MarketTradeStats(ctx, conditionID, since)
	if err != nil {
		return nil, err
	}
	e.marketStats.Set(conditionID, *stats)
	return stats, nil
}
