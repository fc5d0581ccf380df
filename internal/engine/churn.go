package engine

import "github.com/marketsentry/marketsentry/internal/storage"

// isChurningPair reports whether a wallet's trailing-week activity on one
// market looks like buy/sell cycling rather than a single conviction
// position. An insider places a bet and holds it; flipping in and out of the
// same contract is retail scalping.
func isChurningPair(a *storage.PairActivity) bool {
	if a == nil {
		return false
	}
	if a.BuyCount == 0 || a.SellCount == 0 {
		return false
	}
	return a.TradeCount >= 4 || a.DistinctDays >= 2
}

// isDayTrader labels a wallet a day trader if its trailing-week activity
// across all markets satisfies at least three of: high trade count, wide
// market spread, small average size, uniform sizing. Distinct from the
// market-level churn check: that one gates the fresh-wallet detector, this
// one is a persisted wallet label.
func isDayTrader(s *storage.WalletWindowStats) bool {
	if s == nil || s.TradeCount == 0 {
		return false
	}

	criteria := 0
	if s.TradeCount >= 20 {
		criteria++
	}
	if s.DistinctMarkets >= 10 {
		criteria++
	}
	if s.AvgValueUSD > 0 && s.AvgValueUSD < 500 {
		criteria++
	}
	if s.AvgValueUSD > 0 && s.StddevValueUSD/s.AvgValueUSD < 0.5 {
		criteria++
	}
	return criteria >= 3
}
