package engine

import "time"

// Kind identifies which detector produced an alert.
type Kind string

const (
	KindCriticalFresh Kind = "CRITICAL_FRESH"
	KindStructuring   Kind = "SUSPICIOUS_STRUCTURING"
	KindWhaleAnomaly  Kind = "WHALE_ANOMALY"
	KindProvenWinner  Kind = "PROVEN_WINNER"
	KindMegaSignal    Kind = "MEGA_SIGNAL"
)

// Severity buckets alerts for notification routing.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Trade is the engine's input: one observed trade event.
type Trade struct {
	Wallet      string
	ConditionID string
	ValueUSD    float64
	Price       float64
	Side        string
	Outcome     string
	Timestamp   time.Time
}

// Alert is one scored detection. Confidence is the detector's raw score;
// AdjustedConfidence is what remains after the insider boost and urgency
// weighting, and is what severity routing and position sizing use.
type Alert struct {
	Kind        Kind
	Severity    Severity
	Wallet      string
	ConditionID string
	Title       string
	Description string

	Confidence         float64
	InsiderBoost       float64
	UrgencyMultiplier  float64
	AdjustedConfidence float64
	HoursToResolution  float64

	SupportingData map[string]interface{}
	Position       *PositionRecommendation
}

// PositionRecommendation is a half-Kelly stake suggestion for an alert.
type PositionRecommendation struct {
	RecommendedUSD float64
	KellyFraction  float64
	HalfKelly      float64
	CappedFraction float64
	EdgePct        float64
	BankrollUSD    float64
	Explanation    string
}
