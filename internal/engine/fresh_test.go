package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/storage"
)

func TestFreshWalletNoRecordIsMaximallyFresh(t *testing.T) {
	e := newTestEngine(&fakeStore{}, &fakeOracle{})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(15000), classify.Normal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Confidence != 0.95 {
		t.Errorf("confidence = %.4f, want 0.95", alert.Confidence)
	}
	if alert.Severity != SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", alert.Severity)
	}
}

func TestFreshWalletConfidenceFormula(t *testing.T) {
	tests := []struct {
		name      string
		ageHours  float64
		valueUSD  float64
		trades    int
		volumeUSD float64
		want      float64 // 0 means no alert
	}{
		{
			// 0.5 + 0.2 (age <12h) + 0.2 (value >10k) = 0.9
			name:      "young wallet big trade",
			ageHours:  10,
			valueUSD:  12000,
			trades:    3,
			volumeUSD: 20000,
			want:      0.9,
		},
		{
			// 0.5 + 0.3 (age <1h) + 0.15 (value >5k) + 0.1 (over half lifetime) = 1.05 -> clamp irrelevant, 0.1 bonus applies since 6000 > 5000
			name:      "brand new wallet",
			ageHours:  0.5,
			valueUSD:  6000,
			trades:    2,
			volumeUSD: 5000,
			want:      1.05,
		},
		{
			// 0.5 + 0.1 (age <24h) + 0.1 (value >2k) = 0.7, right on the emit gate
			name:      "at emit threshold",
			ageHours:  20,
			valueUSD:  2500,
			trades:    5,
			volumeUSD: 50000,
			want:      0.7,
		},
		{
			// 0.5 + 0.1 (value >2k) = 0.6, below the 0.70 gate
			name:      "below emit threshold",
			ageHours:  48,
			valueUSD:  2500,
			trades:    5,
			volumeUSD: 50000,
			want:      0,
		},
		{
			name:      "too old",
			ageHours:  100,
			valueUSD:  50000,
			trades:    5,
			volumeUSD: 50000,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := testNow.Add(-time.Duration(tt.ageHours * float64(time.Hour)))
			store := &fakeStore{
				wallet: &storage.Wallet{
					WalletAddress:  "0xabc",
					FirstSeenTS:    first.Unix(),
					TotalTrades:    tt.trades,
					TotalVolumeUSD: tt.volumeUSD,
				},
			}
			e := newTestEngine(store, &fakeOracle{first: first})

			alert, err := e.detectFreshWallet(context.Background(), testTrade(tt.valueUSD), classify.Normal)
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

			want := tt.want
			if want > maxConfidence {
				want = maxConfidence
			}
			if math.Abs(alert.Confidence-want) > 0.0001 {
				t.Errorf("confidence = %.4f, want %.4f", alert.Confidence, want)
			}

			wantSeverity := SeverityHigh
			if want >= 0.85 {
				wantSeverity = SeverityCritical
			}
			if alert.Severity != wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, wantSeverity)
			}
		})
	}
}

func TestFreshWalletNeverFiresOnGambling(t *testing.T) {
	// Even a maximally suspicious trade must not fire on a gambling market.
	e := newTestEngine(&fakeStore{}, &fakeOracle{})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(1e9), classify.Gambling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("fresh wallet fired on a gambling market")
	}
}

func TestFreshWalletNeverFiresWhenChurning(t *testing.T) {
	store := &fakeStore{
		pair: &storage.PairActivity{
			TradeCount:   6,
			BuyCount:     4,
			SellCount:    2,
			DistinctDays: 3,
		},
	}
	e := newTestEngine(store, &fakeOracle{})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(50000), classify.Normal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("fresh wallet fired on a churning pair")
	}
}

func TestFreshWalletBelowMinimumValue(t *testing.T) {
	e := newTestEngine(&fakeStore{}, &fakeOracle{})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(999), classify.Normal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("fresh wallet fired below the minimum significance floor")
	}
}

func TestFreshWalletOracleDisagreementCorrectsAndAbstains(t *testing.T) {
	localFirst := testNow.Add(-2 * time.Hour)
	oracleFirst := testNow.Add(-1000 * time.Hour)
	store := &fakeStore{
		wallet: &storage.Wallet{
			WalletAddress:  "0xabc",
			FirstSeenTS:    localFirst.Unix(),
			TotalTrades:    1,
			TotalVolumeUSD: 100,
		},
	}
	e := newTestEngine(store, &fakeOracle{first: oracleFirst})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(20000), classify.Normal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert when the oracle shows the wallet as older")
	}
	if store.correctedFirstSeen != oracleFirst.Unix() {
		t.Errorf("first seen corrected to %d, want %d", store.correctedFirstSeen, oracleFirst.Unix())
	}
}

func TestFreshWalletOracleUnreachableFallsBackToLocal(t *testing.T) {
	localFirst := testNow.Add(-2 * time.Hour)
	store := &fakeStore{
		wallet: &storage.Wallet{
			WalletAddress:  "0xabc",
			FirstSeenTS:    localFirst.Unix(),
			TotalTrades:    1,
			TotalVolumeUSD: 100,
		},
	}
	e := newTestEngine(store, &fakeOracle{err: context.DeadlineExceeded})

	alert, err := e.detectFreshWallet(context.Background(), testTrade(20000), classify.Normal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert from the local fallback")
	}
}

func TestReconcileFirstSeen(t *testing.T) {
	tests := []struct {
		name   string
		local  int64
		oracle int64
		want   int64
	}{
		{"oracle older wins", 1000, 500, 500},
		{"oracle newer ignored", 1000, 2000, 1000},
		{"oracle zero ignored", 1000, 0, 1000},
		{"equal unchanged", 1000, 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconcileFirstSeen(tt.local, tt.oracle); got != tt.want {
				t.Errorf("reconcileFirstSeen(%d, %d) = %d, want %d", tt.local, tt.oracle, got, tt.want)
			}
		})
	}
}
