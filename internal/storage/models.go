package storage

import (
	"time"

	"gorm.io/gorm"
)

// AppState stores application state for checkpointing
type AppState struct {
	StateKey   string `gorm:"primaryKey;size:64"`
	StateValue string `gorm:"type:text;not null"`
	UpdatedTS  int64  `gorm:"not null;index"`
}

func (AppState) TableName() string {
	return "app_state"
}

// TradeSeen tracks processed trades for deduplication and windowed lookups
type TradeSeen struct {
	TradeHash       string  `gorm:"primaryKey;size:128"`
	TransactionHash string  `gorm:"size:128;index"`
	ConditionID     string  `gorm:"size:128;not null;index:idx_trades_market_ts"`
	ProxyWallet     string  `gorm:"size:128;not null;index:idx_trades_wallet_ts"`
	TimestampSec    int64   `gorm:"not null;index;index:idx_trades_market_ts;index:idx_trades_wallet_ts"`
	NotionalUSD     float64 `gorm:"type:decimal(20,6);not null"`
	Side            string  `gorm:"size:10;not null"`
	Outcome         string  `gorm:"size:255;not null"`
	Price           float64 `gorm:"type:decimal(10,6);not null"`
	CreatedTS       int64   `gorm:"not null"`
}

func (TradeSeen) TableName() string {
	return "trades_seen"
}

// Wallet tracks per-wallet lifetime activity and performance
type Wallet struct {
	WalletAddress  string  `gorm:"primaryKey;size:128"`
	FirstSeenTS    int64   `gorm:"not null;index"`
	TotalTrades    int     `gorm:"not null;default:1"`
	TotalVolumeUSD float64 `gorm:"type:decimal(20,6);not null;default:0"`
	TotalPnlUSD    float64 `gorm:"type:decimal(20,6);not null;default:0"`
	WinRate        float64 `gorm:"type:decimal(5,4);not null;default:0.0000"`
	IsWhale        bool    `gorm:"default:false"`
	IsDayTrader    bool    `gorm:"default:false;index"`
	LastActivityTS int64   `gorm:"not null;index"`
	UpdatedTS      int64   `gorm:"not null"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Follow priority tiers for wallet profiles
const (
	TierPriority = "PRIORITY"
	TierNormal   = "NORMAL"
	TierIgnore   = "IGNORE"
)

// WalletProfile tracks how a wallet's past signals performed, and whether it
// should be followed with priority or ignored.
type WalletProfile struct {
	WalletAddress     string  `gorm:"primaryKey;size:128"`
	SignalsGenerated  int     `gorm:"not null;default:0"`
	SignalsProfitable int     `gorm:"not null;default:0"`
	SignalAccuracy    float64 `gorm:"type:decimal(5,4);not null;default:0.0000;index"`
	FollowPriority    string  `gorm:"size:16;not null;default:'NORMAL'"` // PRIORITY, NORMAL, IGNORE
	UpdatedTS         int64   `gorm:"not null"`
}

func (WalletProfile) TableName() string {
	return "wallet_profiles"
}

// Market caches market metadata from the Gamma API plus resolution state
type Market struct {
	ConditionID    string  `gorm:"primaryKey;size:128"`
	MarketSlug     string  `gorm:"size:255;index"`
	Question       string  `gorm:"size:512"`
	MarketURL      string  `gorm:"size:512"`
	Category       string  `gorm:"size:128"`
	EndDate        int64   `gorm:"default:0;index"`
	WinningOutcome string  `gorm:"size:255"` // empty until resolved
	ResolvedTS     int64   `gorm:"default:0;index"`
	VolumeNum      float64 `gorm:"type:decimal(20,6)"`
	LiquidityNum   float64 `gorm:"type:decimal(20,6)"`
	IsActive       bool    `gorm:"default:true"`
	UpdatedTS      int64   `gorm:"not null;index"`
}

func (Market) TableName() string {
	return "markets"
}

// Alert stores scored alerts, including the position recommendation and the
// outcome fields filled in after the market resolves.
type Alert struct {
	ID                int64   `gorm:"primaryKey;autoIncrement"`
	AlertKind         string  `gorm:"size:32;not null;index"`
	Severity          string  `gorm:"size:16;not null;index"`
	WalletAddress     string  `gorm:"size:128;not null;index"`
	ConditionID       string  `gorm:"size:128;not null;index"`
	Title             string  `gorm:"size:512"`
	Description       string  `gorm:"type:text"`
	Side              string  `gorm:"size:10;not null"`
	Outcome           string  `gorm:"size:255;not null"`
	NotionalUSD       float64 `gorm:"type:decimal(20,6);not null"`
	Price             float64 `gorm:"type:decimal(10,6);not null"`
	RawConfidence     float64 `gorm:"type:decimal(5,4);not null"`
	InsiderBoost      float64 `gorm:"type:decimal(5,4);not null;default:0"`
	UrgencyMultiplier float64 `gorm:"type:decimal(4,2);not null;default:1.00"`
	Confidence        float64 `gorm:"type:decimal(5,4);not null;index"`
	HoursToResolution float64 `gorm:"type:decimal(10,2);not null;default:0"`
	SupportingData    string  `gorm:"type:text"` // JSON evidence map
	RecommendedUSD    float64 `gorm:"type:decimal(20,6);not null;default:0"`
	KellyFraction     float64 `gorm:"type:decimal(6,4);not null;default:0"`
	HalfKelly         float64 `gorm:"type:decimal(6,4);not null;default:0"`
	CappedFraction    float64 `gorm:"type:decimal(6,4);not null;default:0"`
	EdgePct           float64 `gorm:"type:decimal(8,4);not null;default:0"`
	BankrollUSD       float64 `gorm:"type:decimal(20,6);not null;default:0"`
	TradeTimestampSec int64   `gorm:"not null"`
	OutcomeKnown      bool    `gorm:"default:false;index"`
	WasCorrect        bool    `gorm:"default:false"`
	ProfitUSD         float64 `gorm:"type:decimal(20,6);not null;default:0"`
	CreatedTS         int64   `gorm:"not null;index"`
}

func (Alert) TableName() string {
	return "alerts"
}

// WalletStats tracks win rate and performance computed from resolved markets
type WalletStats struct {
	WalletAddress       string  `gorm:"primaryKey;size:128"`
	TotalResolvedTrades int     `gorm:"not null;default:0"`
	WinningTrades       int     `gorm:"not null;default:0"`
	LosingTrades        int     `gorm:"not null;default:0"`
	WinRate             float64 `gorm:"type:decimal(5,4);not null;default:0.0000;index"`
	TotalProfitUSD      float64 `gorm:"type:decimal(20,6);not null;default:0"`
	LastCalculatedTS    int64   `gorm:"not null;index"`
}

func (WalletStats) TableName() string {
	return "wallet_stats"
}

// BeforeCreate hooks for timestamps
func (a *AppState) BeforeCreate(tx *gorm.DB) error {
	if a.UpdatedTS == 0 {
		a.UpdatedTS = time.Now().Unix()
	}
	return nil
}

func (t *TradeSeen) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedTS == 0 {
		t.CreatedTS = time.Now().Unix()
	}
	return nil
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.UpdatedTS == 0 {
		w.UpdatedTS = time.Now().Unix()
	}
	return nil
}

func (p *WalletProfile) BeforeCreate(tx *gorm.DB) error {
	if p.UpdatedTS == 0 {
		p.UpdatedTS = time.Now().Unix()
	}
	return nil
}

func (m *Market) BeforeCreate(tx *gorm.DB) error {
	if m.UpdatedTS == 0 {
		m.UpdatedTS = time.Now().Unix()
	}
	return nil
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedTS == 0 {
		a.CreatedTS = time.Now().Unix()
	}
	return nil
}

func (w *WalletStats) BeforeCreate(tx *gorm.DB) error {
	if w.LastCalculatedTS == 0 {
		w.LastCalculatedTS = time.Now().Unix()
	}
	return nil
}
