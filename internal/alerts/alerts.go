package alerts

import (
	"context"
	"time"
)

// AlertPayload contains all information for a notification
type AlertPayload struct {
	Kind          string // CRITICAL_FRESH, SUSPICIOUS_STRUCTURING, WHALE_ANOMALY, PROVEN_WINNER, MEGA_SIGNAL
	Severity      string // CRITICAL, HIGH, MEDIUM
	WalletAddress string
	WalletShort   string // Shortened for display
	MarketTitle   string
	MarketURL     string
	Side          string
	Outcome       string
	NotionalUSD   float64
	Price         float64

	Title             string
	Description       string
	Confidence        float64 // adjusted, what severity routing used
	RawConfidence     float64
	InsiderBoost      float64
	UrgencyMultiplier float64
	HoursToResolution float64
	SupportingData    map[string]interface{}

	// Position recommendation
	RecommendedUSD float64
	CappedFraction float64
	EdgePct        float64
	PositionNote   string

	Timestamp   time.Time
	Environment string
}

// Sender defines the interface for alert senders
type Sender interface {
	Send(ctx context.Context, payload *AlertPayload) error
}
