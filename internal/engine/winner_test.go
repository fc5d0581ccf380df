package engine

import (
	"context"
	"math"
	"testing"

	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/storage"
)

func TestProvenWinnerTrackRecord(t *testing.T) {
	tests := []struct {
		name         string
		profile      *storage.WalletProfile
		valueUSD     float64
		want         float64 // 0 means no alert
		wantSeverity Severity
	}{
		{
			name: "accurate wallet",
			profile: &storage.WalletProfile{
				SignalsGenerated: 8,
				SignalAccuracy:   0.80,
				FollowPriority:   storage.TierNormal,
			},
			valueUSD:     2000,
			want:         0.80,
			wantSeverity: SeverityHigh,
		},
		{
			// Priority tier gets a 1.15x trust multiplier: 0.70 * 1.15 = 0.805
			name: "priority tier boosted",
			profile: &storage.WalletProfile{
				SignalsGenerated: 12,
				SignalAccuracy:   0.70,
				FollowPriority:   storage.TierPriority,
			},
			valueUSD:     2000,
			want:         0.805,
			wantSeverity: SeverityHigh,
		},
		{
			// The priority multiplier never pushes past 0.95: 0.90 * 1.15 = 1.035
			name: "priority boost capped",
			profile: &storage.WalletProfile{
				SignalsGenerated: 20,
				SignalAccuracy:   0.90,
				FollowPriority:   storage.TierPriority,
			},
			valueUSD:     2000,
			want:         0.95,
			wantSeverity: SeverityHigh,
		},
		{
			name: "moderate accuracy is medium",
			profile: &storage.WalletProfile{
				SignalsGenerated: 5,
				SignalAccuracy:   0.65,
				FollowPriority:   storage.TierNormal,
			},
			valueUSD:     2000,
			want:         0.65,
			wantSeverity: SeverityMedium,
		},
		{
			name: "ignore tier abstains",
			profile: &storage.WalletProfile{
				SignalsGenerated: 20,
				SignalAccuracy:   0.90,
				FollowPriority:   storage.TierIgnore,
			},
			valueUSD: 5000,
			want:     0,
		},
		{
			name: "too few signals",
			profile: &storage.WalletProfile{
				SignalsGenerated: 2,
				SignalAccuracy:   1.0,
				FollowPriority:   storage.TierNormal,
			},
			valueUSD: 5000,
			want:     0,
		},
		{
			name: "accuracy below threshold",
			profile: &storage.WalletProfile{
				SignalsGenerated: 10,
				SignalAccuracy:   0.55,
				FollowPriority:   storage.TierNormal,
			},
			valueUSD: 5000,
			want:     0,
		},
		{
			name: "trade too small to matter",
			profile: &storage.WalletProfile{
				SignalsGenerated: 10,
				SignalAccuracy:   0.90,
				FollowPriority:   storage.TierNormal,
			},
			valueUSD: 499,
			want:     0,
		},
		{
			name:     "no profile",
			profile:  nil,
			valueUSD: 5000,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{profile: tt.profile}
			e := newTestEngine(store, &fakeOracle{})

			alert, err := e.detectProvenWinner(context.Background(), testTrade(tt.valueUSD), classify.Normal)
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
