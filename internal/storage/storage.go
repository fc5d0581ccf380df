package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the GORM database connection
type DB struct {
	conn *gorm.DB
	log  *logrus.Logger
}

// TradeStats is the trailing-window trade baseline for one market.
type TradeStats struct {
	TradeCount     int
	AvgValueUSD    float64
	StddevValueUSD float64
}

// PairActivity aggregates one wallet's trades on one market over a window.
type PairActivity struct {
	TradeCount    int
	TotalValueUSD float64
	AvgValueUSD   float64
	BuyCount      int
	SellCount     int
	DistinctDays  int
	FirstTradeTS  int64
	LastTradeTS   int64
}

// WalletWindowStats aggregates one wallet's trades across all markets over a window.
type WalletWindowStats struct {
	TradeCount      int
	TotalValueUSD   float64
	DistinctMarkets int
	AvgValueUSD     float64
	StddevValueUSD  float64
}

// SignalPerformance is a wallet's alert track record from resolved markets.
type SignalPerformance struct {
	WalletAddress string
	Total         int
	Correct       int
	ProfitUSD     float64
}

// New creates a new database connection with GORM
func New(cfg *config.Config, log *logrus.Logger) (*DB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		&gormLogAdapter{log: log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DatabaseMaxConns)
	sqlDB.SetMaxIdleConns(cfg.DatabaseMaxConns / 2)
	sqlDB.SetConnMaxIdleTime(cfg.DatabaseMaxIdleTime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Database connection established")

	return &DB{conn: conn, log: log}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs GORM auto-migration (for development only)
func (db *DB) AutoMigrate() error {
	return db.conn.AutoMigrate(
		&AppState{},
		&TradeSeen{},
		&Wallet{},
		&WalletProfile{},
		&Market{},
		&Alert{},
		&WalletStats{},
	)
}

// timed wraps a database operation with query metrics
func timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordDatabaseQuery(operation, time.Since(start), err)
	return err
}

// GetState retrieves a state value by key
func (db *DB) GetState(ctx context.Context, key string) (string, error) {
	var state AppState
	result := db.conn.WithContext(ctx).Where("state_key = ?", key).First(&state)
	if result.Error == gorm.ErrRecordNotFound {
		return "", nil
	}
	if result.Error != nil {
		return "", result.Error
	}
	return state.StateValue, nil
}

// SetState sets a state value
func (db *DB) SetState(ctx context.Context, key, value string) error {
	state := AppState{
		StateKey:   key,
		StateValue: value,
		UpdatedTS:  time.Now().Unix(),
	}
	return db.conn.WithContext(ctx).Save(&state).Error
}

// HasTradeSeen checks if a trade has been seen
func (db *DB) HasTradeSeen(ctx context.Context, tradeHash string) (bool, error) {
	var count int64
	result := db.conn.WithContext(ctx).
		Model(&TradeSeen{}).
		Where("trade_hash = ?", tradeHash).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// InsertTrade inserts a new trade record
func (db *DB) InsertTrade(ctx context.Context, trade *TradeSeen) error {
	return timed("insert_trade", func() error {
		return db.conn.WithContext(ctx).Create(trade).Error
	})
}

// GetWallet retrieves a wallet record. Returns nil, nil when unknown.
func (db *DB) GetWallet(ctx context.Context, address string) (*Wallet, error) {
	var wallet Wallet
	result := db.conn.WithContext(ctx).Where("wallet_address = ?", address).First(&wallet)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &wallet, nil
}

// UpsertWallet inserts a wallet or accumulates activity onto an existing one
func (db *DB) UpsertWallet(ctx context.Context, wallet *Wallet) error {
	existing, err := db.GetWallet(ctx, wallet.WalletAddress)
	if err != nil {
		return err
	}

	if existing == nil {
		return db.conn.WithContext(ctx).Create(wallet).Error
	}

	updates := map[string]interface{}{
		"total_trades":     gorm.Expr("total_trades + ?", wallet.TotalTrades),
		"total_volume_usd": gorm.Expr("total_volume_usd + ?", wallet.TotalVolumeUSD),
		"last_activity_ts": wallet.LastActivityTS,
		"updated_ts":       wallet.UpdatedTS,
	}
	return db.conn.WithContext(ctx).
		Model(&Wallet{}).
		Where("wallet_address = ?", wallet.WalletAddress).
		Updates(updates).Error
}

// CorrectWalletFirstSeen moves a wallet's first-seen timestamp backward only.
// A later timestamp than the stored one is a no-op.
func (db *DB) CorrectWalletFirstSeen(ctx context.Context, address string, firstSeenTS int64) error {
	return db.conn.WithContext(ctx).
		Model(&Wallet{}).
		Where("wallet_address = ?", address).
		Update("first_seen_ts", gorm.Expr("LEAST(first_seen_ts, ?)", firstSeenTS)).Error
}

// SetDayTraderFlag persists the wallet-level day trader label
func (db *DB) SetDayTraderFlag(ctx context.Context, address string, isDayTrader bool) error {
	return db.conn.WithContext(ctx).
		Model(&Wallet{}).
		Where("wallet_address = ?", address).
		Updates(map[string]interface{}{
			"is_day_trader": isDayTrader,
			"updated_ts":    time.Now().Unix(),
		}).Error
}

// UpdateWalletPerformance sets win rate and realized P&L on the wallet record
func (db *DB) UpdateWalletPerformance(ctx context.Context, address string, winRate, pnlUSD float64) error {
	return db.conn.WithContext(ctx).
		Model(&Wallet{}).
		Where("wallet_address = ?", address).
		Updates(map[string]interface{}{
			"win_rate":      winRate,
			"total_pnl_usd": pnlUSD,
			"updated_ts":    time.Now().Unix(),
		}).Error
}

// GetWalletProfile retrieves a wallet's signal-tracking profile. Returns
// nil, nil when the wallet has never generated a signal.
func (db *DB) GetWalletProfile(ctx context.Context, address string) (*WalletProfile, error) {
	var profile WalletProfile
	result := db.conn.WithContext(ctx).Where("wallet_address = ?", address).First(&profile)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &profile, nil
}

// UpsertWalletProfile inserts or updates a wallet profile
func (db *DB) UpsertWalletProfile(ctx context.Context, profile *WalletProfile) error {
	profile.UpdatedTS = time.Now().Unix()
	return db.conn.WithContext(ctx).Save(profile).Error
}

// GetMarket retrieves cached market metadata. Returns nil, nil when unknown.
func (db *DB) GetMarket(ctx context.Context, conditionID string) (*Market, error) {
	var market Market
	result := db.conn.WithContext(ctx).Where("condition_id = ?", conditionID).First(&market)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &market, nil
}

// UpsertMarket inserts or updates market metadata
func (db *DB) UpsertMarket(ctx context.Context, market *Market) error {
	market.UpdatedTS = time.Now().Unix()
	return db.conn.WithContext(ctx).Save(market).Error
}

// MarketsPendingResolution lists markets past their end date with no recorded winner
func (db *DB) MarketsPendingResolution(ctx context.Context, asOf int64) ([]Market, error) {
	var markets []Market
	result := db.conn.WithContext(ctx).
		Where("end_date > 0 AND end_date <= ? AND winning_outcome = ''", asOf).
		Find(&markets)
	return markets, result.Error
}

// SetMarketResolution records the winning outcome for a market
func (db *DB) SetMarketResolution(ctx context.Context, conditionID, winningOutcome string) error {
	now := time.Now().Unix()
	return db.conn.WithContext(ctx).
		Model(&Market{}).
		Where("condition_id = ?", conditionID).
		Updates(map[string]interface{}{
			"winning_outcome": winningOutcome,
			"resolved_ts":     now,
			"is_active":       false,
			"updated_ts":      now,
		}).Error
}

// InsertAlert inserts a new alert record
func (db *DB) InsertAlert(ctx context.Context, alert *Alert) (int64, error) {
	err := timed("insert_alert", func() error {
		return db.conn.WithContext(ctx).Create(alert).Error
	})
	if err != nil {
		return 0, err
	}
	return alert.ID, nil
}

// GetLastAlertForPair retrieves the most recent alert for a wallet on a market,
// used by the cooldown check.
func (db *DB) GetLastAlertForPair(ctx context.Context, wallet, conditionID string) (*Alert, error) {
	var alert Alert
	result := db.conn.WithContext(ctx).
		Where("wallet_address = ? AND condition_id = ?", wallet, conditionID).
		Order("created_ts DESC").
		First(&alert)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &alert, nil
}

// AlertsPendingOutcome lists alerts on a resolved market that have not been scored yet
func (db *DB) AlertsPendingOutcome(ctx context.Context, conditionID string) ([]Alert, error) {
	var alerts []Alert
	result := db.conn.WithContext(ctx).
		Where("condition_id = ? AND outcome_known = false", conditionID).
		Find(&alerts)
	return alerts, result.Error
}

// SetAlertOutcome records whether an alert's implied position paid off
func (db *DB) SetAlertOutcome(ctx context.Context, alertID int64, wasCorrect bool, profitUSD float64) error {
	return db.conn.WithContext(ctx).
		Model(&Alert{}).
		Where("id = ?", alertID).
		Updates(map[string]interface{}{
			"outcome_known": true,
			"was_correct":   wasCorrect,
			"profit_usd":    profitUSD,
		}).Error
}

// SignalPerformanceByWallet aggregates scored alerts per wallet, for profile updates
func (db *DB) SignalPerformanceByWallet(ctx context.Context, conditionID string) ([]SignalPerformance, error) {
	var rows []SignalPerformance
	err := timed("signal_performance", func() error {
		return db.conn.WithContext(ctx).Raw(`
			SELECT wallet_address,
			       COUNT(*) AS total,
			       COALESCE(SUM(was_correct), 0) AS correct,
			       COALESCE(SUM(profit_usd), 0) AS profit_usd
			FROM alerts
			WHERE condition_id = ? AND outcome_known = true
			GROUP BY wallet_address`, conditionID).
			Scan(&rows).Error
	})
	return rows, err
}

// MarketTradeStats computes the mean/stddev baseline of trade sizes on a
// market since the given timestamp.
func (db *DB) MarketTradeStats(ctx context.Context, conditionID string, sinceTS int64) (*TradeStats, error) {
	var stats TradeStats
	err := timed("market_trade_stats", func() error {
		return db.conn.WithContext(ctx).Raw(`
			SELECT COUNT(*) AS trade_count,
			       COALESCE(AVG(notional_usd), 0) AS avg_value_usd,
			       COALESCE(STDDEV_POP(notional_usd), 0) AS stddev_value_usd
			FROM trades_seen
			WHERE condition_id = ? AND timestamp_sec >= ?`, conditionID, sinceTS).
			Scan(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetPairActivity aggregates one wallet's trades on one market since the
// given timestamp.
func (db *DB) GetPairActivity(ctx context.Context, wallet, conditionID string, sinceTS int64) (*PairActivity, error) {
	var activity PairActivity
	err := timed("pair_activity", func() error {
		return db.conn.WithContext(ctx).Raw(`
			SELECT COUNT(*) AS trade_count,
			       COALESCE(SUM(notional_usd), 0) AS total_value_usd,
			       COALESCE(AVG(notional_usd), 0) AS avg_value_usd,
			       COALESCE(SUM(side = 'BUY'), 0) AS buy_count,
			       COALESCE(SUM(side = 'SELL'), 0) AS sell_count,
			       COUNT(DISTINCT DATE(FROM_UNIXTIME(timestamp_sec))) AS distinct_days,
			       COALESCE(MIN(timestamp_sec), 0) AS first_trade_ts,
			       COALESCE(MAX(timestamp_sec), 0) AS last_trade_ts
			FROM trades_seen
			WHERE proxy_wallet = ? AND condition_id = ? AND timestamp_sec >= ?`,
			wallet, conditionID, sinceTS).
			Scan(&activity).Error
	})
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetWalletWindowStats aggregates one wallet's trades across all markets
// since the given timestamp.
func (db *DB) GetWalletWindowStats(ctx context.Context, wallet string, sinceTS int64) (*WalletWindowStats, error) {
	var stats WalletWindowStats
	err := timed("wallet_window_stats", func() error {
		return db.conn.WithContext(ctx).Raw(`
			SELECT COUNT(*) AS trade_count,
			       COALESCE(SUM(notional_usd), 0) AS total_value_usd,
			       COUNT(DISTINCT condition_id) AS distinct_markets,
			       COALESCE(AVG(notional_usd), 0) AS avg_value_usd,
			       COALESCE(STDDEV_POP(notional_usd), 0) AS stddev_value_usd
			FROM trades_seen
			WHERE proxy_wallet = ? AND timestamp_sec >= ?`, wallet, sinceTS).
			Scan(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// DistinctMarketCount returns the number of markets a wallet has ever traded
func (db *DB) DistinctMarketCount(ctx context.Context, wallet string) (int, error) {
	var count int64
	result := db.conn.WithContext(ctx).
		Model(&TradeSeen{}).
		Where("proxy_wallet = ?", wallet).
		Distinct("condition_id").
		Count(&count)
	return int(count), result.Error
}

// GetTradesByConditionID retrieves all trades for a specific condition ID
func (db *DB) GetTradesByConditionID(ctx context.Context, conditionID string) ([]TradeSeen, error) {
	var trades []TradeSeen
	result := db.conn.WithContext(ctx).Where("condition_id = ?", conditionID).Find(&trades)
	return trades, result.Error
}

// GetWalletStats retrieves wallet statistics. Returns nil, nil when unknown.
func (db *DB) GetWalletStats(ctx context.Context, walletAddress string) (*WalletStats, error) {
	var stats WalletStats
	result := db.conn.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&stats)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &stats, nil
}

// UpsertWalletStats inserts or updates wallet statistics
func (db *DB) UpsertWalletStats(ctx context.Context, stats *WalletStats) error {
	return db.conn.WithContext(ctx).Save(stats).Error
}

// gormLogAdapter adapts logrus to GORM's logger interface
type gormLogAdapter struct {
	log *logrus.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}
