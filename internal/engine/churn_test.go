package engine

import (
	"testing"

	"github.com/marketsentry/marketsentry/internal/storage"
)

func TestIsChurningPair(t *testing.T) {
	tests := []struct {
		name string
		a    *storage.PairActivity
		want bool
	}{
		{"nil activity", nil, false},
		{"no activity", &storage.PairActivity{}, false},
		{"buys only", &storage.PairActivity{TradeCount: 10, BuyCount: 10, DistinctDays: 3}, false},
		{"sells only", &storage.PairActivity{TradeCount: 10, SellCount: 10, DistinctDays: 3}, false},
		{"both sides high count", &storage.PairActivity{TradeCount: 4, BuyCount: 3, SellCount: 1, DistinctDays: 1}, true},
		{"both sides multi day", &storage.PairActivity{TradeCount: 2, BuyCount: 1, SellCount: 1, DistinctDays: 2}, true},
		{"both sides but one quick flip", &storage.PairActivity{TradeCount: 2, BuyCount: 1, SellCount: 1, DistinctDays: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isChurningPair(tt.a); got != tt.want {
				t.Errorf("isChurningPair() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDayTrader(t *testing.T) {
	tests := []struct {
		name string
		s    *storage.WalletWindowStats
		want bool
	}{
		{"nil stats", nil, false},
		{"no trades", &storage.WalletWindowStats{}, false},
		{
			// High count, wide spread, small sizes: three criteria.
			"classic day trader",
			&storage.WalletWindowStats{TradeCount: 30, DistinctMarkets: 12, AvgValueUSD: 200, StddevValueUSD: 150},
			true,
		},
		{
			// High count, small uniform sizes: count + size + uniformity.
			"grinder on few markets",
			&storage.WalletWindowStats{TradeCount: 25, DistinctMarkets: 4, AvgValueUSD: 100, StddevValueUSD: 20},
			true,
		},
		{
			// Only two criteria: count and spread.
			"active but big variable bets",
			&storage.WalletWindowStats{TradeCount: 25, DistinctMarkets: 12, AvgValueUSD: 5000, StddevValueUSD: 6000},
			false,
		},
		{
			// One large conviction bettor.
			"whale",
			&storage.WalletWindowStats{TradeCount: 2, DistinctMarkets: 1, AvgValueUSD: 25000, StddevValueUSD: 5000},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDayTrader(tt.s); got != tt.want {
				t.Errorf("isDayTrader() = %v, want %v", got, tt.want)
			}
		})
	}
}
