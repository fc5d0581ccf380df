package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/storage"
)

func TestInsiderBoostComponents(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeStore
		valueUSD float64
		category classify.Category
		want     float64
	}{
		{
			// All components together exceed the additive cap:
			// 0.15 + 0.10 + 0.10 + 0.10 + 0.15 = 0.60 -> 0.45
			name: "everything fires capped at maximum",
			store: &fakeStore{
				window:   &storage.WalletWindowStats{TradeCount: 2, TotalValueUSD: 1000},
				distinct: 1,
				wallet:   &storage.Wallet{WinRate: 0.85},
			},
			valueUSD: 5000,
			category: classify.HighInsider,
			want:     maxInsiderBoost,
		},
		{
			// Conviction (trade exceeds trailing-week volume) plus selectivity.
			name: "conviction and low frequency",
			store: &fakeStore{
				window:   &storage.WalletWindowStats{TradeCount: 3, TotalValueUSD: 2000},
				distinct: 10,
				wallet:   &storage.Wallet{WinRate: 0.50},
			},
			valueUSD: 3000,
			category: classify.Normal,
			want:     0.25,
		},
		{
			name: "market focus only",
			store: &fakeStore{
				window:   &storage.WalletWindowStats{TradeCount: 30, TotalValueUSD: 100000},
				distinct: 3,
				wallet:   &storage.Wallet{WinRate: 0.50},
			},
			valueUSD: 1000,
			category: classify.Normal,
			want:     0.10,
		},
		{
			name: "high insider category alone",
			store: &fakeStore{
				window:   &storage.WalletWindowStats{TradeCount: 30, TotalValueUSD: 100000},
				distinct: 10,
				wallet:   &storage.Wallet{WinRate: 0.50},
			},
			valueUSD: 1000,
			category: classify.HighInsider,
			want:     0.15,
		},
		{
			name: "nothing fires",
			store: &fakeStore{
				window:   &storage.WalletWindowStats{TradeCount: 30, TotalValueUSD: 100000},
				distinct: 10,
				wallet:   &storage.Wallet{WinRate: 0.50},
			},
			valueUSD: 1000,
			category: classify.Normal,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.store, &fakeOracle{})

			got := e.insiderBoost(context.Background(), testTrade(tt.valueUSD), tt.category)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("boost = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestInsiderBoostDegradesOnStoreFailure(t *testing.T) {
	// Every lookup failing must produce a zero boost, not an error.
	store := &fakeStore{
		windowErr:   errors.New("db down"),
		distinctErr: errors.New("db down"),
		walletErr:   errors.New("db down"),
	}
	e := newTestEngine(store, &fakeOracle{})

	if got := e.insiderBoost(context.Background(), testTrade(5000), classify.Normal); got != 0 {
		t.Errorf("boost = %.4f, want 0 on total lookup failure", got)
	}
}

func TestUrgencyMultiplier(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{-5, 1.0},
		{0, 1.0},
		{1, 1.5},
		{23.9, 1.5},
		{24, 1.25},
		{71.9, 1.25},
		{72, 1.1},
		{167.9, 1.1},
		{168, 1.0},
		{5000, 1.0},
	}
	for _, tt := range tests {
		if got := urgencyMultiplier(tt.hours); got != tt.want {
			t.Errorf("urgencyMultiplier(%.1f) = %.2f, want %.2f", tt.hours, got, tt.want)
		}
	}
}
