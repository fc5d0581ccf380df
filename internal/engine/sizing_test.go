package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/storage"
)

func TestUnusualSizingAgainstBaseline(t *testing.T) {
	tests := []struct {
		name         string
		stats        storage.TradeStats
		valueUSD     float64
		want         float64 // 0 means no alert
		wantSeverity Severity
	}{
		{
			// 10x average and 45 sigma out on a 60-trade baseline:
			// 0.5 + 0.3 (>=10x) + 0.2 (>=5 sigma) + 0.05 (>=50 trades) = 1.05 -> 0.90
			name:         "extreme outlier capped",
			stats:        storage.TradeStats{TradeCount: 60, AvgValueUSD: 500, StddevValueUSD: 100},
			valueUSD:     5000,
			want:         0.90,
			wantSeverity: SeverityHigh,
		},
		{
			// 3x average, 2 sigma, thin baseline: 0.5 + 0.1 = 0.6, MEDIUM
			name:         "modest outlier",
			stats:        storage.TradeStats{TradeCount: 15, AvgValueUSD: 1000, StddevValueUSD: 1000},
			valueUSD:     3000,
			want:         0.6,
			wantSeverity: SeverityMedium,
		},
		{
			// 5x average, 4 sigma, deep baseline: 0.5 + 0.2 + 0.15 + 0.1 = 0.95 -> 0.90
			name:         "deep baseline outlier",
			stats:        storage.TradeStats{TradeCount: 150, AvgValueUSD: 200, StddevValueUSD: 200},
			valueUSD:     1000,
			want:         0.90,
			wantSeverity: SeverityHigh,
		},
		{
			name:     "below multiplier threshold",
			stats:    storage.TradeStats{TradeCount: 60, AvgValueUSD: 500, StddevValueUSD: 100},
			valueUSD: 1000,
			want:     0,
		},
		{
			// Any size is allowed when the baseline has fewer than 10 trades.
			name:     "baseline too thin",
			stats:    storage.TradeStats{TradeCount: 9, AvgValueUSD: 100, StddevValueUSD: 10},
			valueUSD: 1e6,
			want:     0,
		},
		{
			name:     "degenerate average",
			stats:    storage.TradeStats{TradeCount: 50, AvgValueUSD: 0},
			valueUSD: 50000,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.stats
			store := &fakeStore{tradeStats: &stats}
			e := newTestEngine(store, &fakeOracle{})

			alert, err := e.detectUnusualSizing(context.Background(), testTrade(tt.valueUSD), classify.Normal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.want == 0 {
				if alert != nil {
					t.Fatalf("expected no alert, got confidence %.4f", alert.Confidence)
				}
				return
			}
			if alert == nil {
				t.Fatal("expected an alert")
			}
			if math.Abs(alert.Confidence-tt.want) > 0.0001 {
				t.Errorf("confidence = %.4f, want %.4f", alert.Confidence, tt.want)
			}
			if alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestMarketBaselineCaching(t *testing.T) {
	store := &fakeStore{tradeStats: &storage.TradeStats{TradeCount: 60, AvgValueUSD: 500, StddevValueUSD: 100}}
	e := newTestEngine(store, &fakeOracle{})

	if _, err := e.marketBaseline(context.Background(), "0xcond"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}

	// A store failure must not matter once the baseline is cached.
	store.tradeStatsErr = errors.New("db down")
	stats, err := e.marketBaseline(context.Background(), "0xcond")
	if err != nil {
		t.Fatalf("cached lookup hit the store: %v", err)
	}
	if stats.TradeCount != 60 {
		t.Errorf("TradeCount = %d, want 60", stats.TradeCount)
	}
}
