package engine

import (
	"context"

	"github.com/marketsentry/marketsentry/internal/classify"
)

// insiderBoost computes an additive confidence bonus from wallet behavioral
// signals: conviction relative to the wallet's own recent volume, market
// focus, low trade frequency, and a suspiciously high win rate, plus a flat
// bonus on high-insider-potential markets. Independent of the detectors;
// added to each raw confidence before urgency weighting.
//
// Lookup failures degrade to a zero boost rather than failing the analysis.
func (e *Engine) insiderBoost(ctx context.Context, t Trade, cat classify.Category) float64 {
	boost := 0.0

	since := e.now().Add(-churnWindow).Unix()
	window, err := e.store.GetWalletWindowStats(ctx, t.Wallet, since)
	if err != nil {
		e.log.WithError(err).WithField("wallet", t.Wallet).Debug("Boost window stats lookup failed")
	} else if window != nil {
		// More than half the wallet's trailing-week volume in one trade is
		// a genuine conviction bet relative to its own behavior.
		if t.ValueUSD > window.TotalValueUSD {
			boost += 0.15
		}
		// Selective, not a high-frequency trader.
		if window.TradeCount < 5 {
			boost += 0.10
		}
	}

	distinct, err := e.store.DistinctMarketCount(ctx, t.Wallet)
	if err != nil {
		e.log.WithError(err).WithField("wallet", t.Wallet).Debug("Boost market count lookup failed")
	} else if distinct <= 3 {
		// Focused on a few markets, not a generalist gambler.
		boost += 0.10
	}

	wallet, err := e.store.GetWallet(ctx, t.Wallet)
	if err != nil {
		e.log.WithError(err).WithField("wallet", t.Wallet).Debug("Boost wallet lookup failed")
	} else if wallet != nil && wallet.WinRate > 0.70 {
		// Suspiciously accurate.
		boost += 0.10
	}

	if cat == classify.HighInsider {
		boost += 0.15
	}

	if boost > maxInsiderBoost {
		boost = maxInsiderBoost
	}
	return boost
}
