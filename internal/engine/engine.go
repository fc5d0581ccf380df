// Package engine scores individual trades for insider-trading signals.
//
// Each trade runs through four independent detectors (fresh wallet, order
// structuring, unusual sizing, proven winner). Triggered detections get an
// insider-potential boost and an urgency weighting, and when two or more
// fire on the same trade a combined mega signal is synthesized. Every alert
// carries a half-Kelly position recommendation.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketsentry/marketsentry/internal/cache"
	"github.com/marketsentry/marketsentry/internal/classify"
	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	churnWindow       = 7 * 24 * time.Hour
	statsWindow       = 7 * 24 * time.Hour
	defaultHoursToRes = 168.0 // one week when the market has no known end date

	maxConfidence      = 0.99
	maxInsiderBoost    = 0.45
	minProvenWinnerUSD = 500.0
)

// Store is the wallet/market history the detectors read, plus the two
// corrective writes the engine is allowed to make. All reads return nil, nil
// when the record does not exist.
type Store interface {
	GetWallet(ctx context.Context, address string) (*storage.Wallet, error)
	GetWalletProfile(ctx context.Context, address string) (*storage.WalletProfile, error)
	GetMarket(ctx context.Context, conditionID string) (*storage.Market, error)
	MarketTradeStats(ctx context.Context, conditionID string, sinceTS int64) (*storage.TradeStats, error)
	GetPairActivity(ctx context.Context, wallet, conditionID string, sinceTS int64) (*storage.PairActivity, error)
	GetWalletWindowStats(ctx context.Context, wallet string, sinceTS int64) (*storage.WalletWindowStats, error)
	DistinctMarketCount(ctx context.Context, wallet string) (int, error)
	CorrectWalletFirstSeen(ctx context.Context, address string, firstSeenTS int64) error
	SetDayTraderFlag(ctx context.Context, address string, isDayTrader bool) error
}

// AgeOracle is the authoritative source for a wallet's true first trade on
// the platform. Local storage only knows about wallets since ingestion
// started tracking them, which over-reports freshness.
type AgeOracle interface {
	FirstTradeAt(ctx context.Context, wallet string) (time.Time, error)
}

type marketMeta struct {
	question  string
	endDateTS int64
}

// Engine analyzes trades. Safe for concurrent use.
type Engine struct {
	store  Store
	oracle AgeOracle
	cfg    *config.Config
	log    *logrus.Logger

	marketStats *cache.Cache[storage.TradeStats]
	marketMetas *cache.Cache[marketMeta]

	// now is swappable in tests
	now func() time.Time
}

// New creates an Engine.
func New(store Store, oracle AgeOracle, cfg *config.Config, log *logrus.Logger) *Engine {
	return &Engine{
		store:       store,
		oracle:      oracle,
		cfg:         cfg,
		log:         log,
		marketStats: cache.New[storage.TradeStats](cfg.StatsCacheTTL, cfg.CacheMaxEntries),
		// Question text is immutable and could be pinned forever, but the
		// same entry carries the end date, which must stay fresh for the
		// urgency weighting. The shared short TTL just means the question
		// is re-read along with it.
		marketMetas: cache.New[marketMeta](cfg.StatsCacheTTL, cfg.CacheMaxEntries),
		now:         time.Now,
	}
}

// detectorFunc is one detector. A nil alert with nil error means the
// detector legitimately did not trigger; a non-nil error means it could not
// evaluate and abstains.
type detectorFunc func(ctx context.Context, t Trade, cat classify.Category) (*Alert, error)

// Analyze scores one trade and returns all alerts it produced, already
// boosted, urgency-weighted, and sized. A trade with no wallet or market
// identifier yields no alerts. Lookup failures in one detector never abort
// the others.
func (e *Engine) Analyze(ctx context.Context, t Trade) ([]*Alert, error) {
	if t.Wallet == "" || t.ConditionID == "" {
		return nil, nil
	}

	meta := e.marketMeta(ctx, t.ConditionID)
	category := classify.Classify(meta.question)

	detectors := []struct {
		name string
		fn   detectorFunc
	}{
		{"fresh_wallet", e.detectFreshWallet},
		{"structuring", e.detectStructuring},
		{"unusual_sizing", e.detectUnusualSizing},
		{"proven_winner", e.detectProvenWinner},
	}

	results := make([]*Alert, len(detectors))
	var wg sync.WaitGroup
	for i, d := range detectors {
		wg.Add(1)
		go func(i int, name string, fn detectorFunc) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.log.WithFields(logrus.Fields{
						"detector": name,
						"panic":    fmt.Sprintf("%v", r),
					}).Error("Detector panicked, treating as abstain")
					metrics.DetectorsFailed.WithLabelValues(name).Inc()
				}
			}()

			alert, err := fn(ctx, t, category)
			if err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{
					"detector": name,
					"wallet":   t.Wallet,
				}).Warn("Detector lookup failed, abstaining")
				metrics.RecordDetector(name, false, err)
				return
			}
			metrics.RecordDetector(name, alert != nil, nil)
			results[i] = alert
		}(i, d.name, d.fn)
	}
	wg.Wait()

	var triggered []*Alert
	for _, a := range results {
		if a != nil {
			triggered = append(triggered, a)
		}
	}
	if len(triggered) == 0 {
		e.updateDayTraderFlag(ctx, t.Wallet)
		return nil, nil
	}

	boost := e.insiderBoost(ctx, t, category)
	hoursToRes := e.hoursToResolution(meta.endDateTS)
	urgency := urgencyMultiplier(hoursToRes)

	for _, a := range triggered {
		a.InsiderBoost = boost
		a.UrgencyMultiplier = urgency
		a.HoursToResolution = hoursToRes
		a.AdjustedConfidence = clampConfidence((a.Confidence + boost) * urgency)
	}

	alerts := triggered
	if len(triggered) >= 2 {
		alerts = append(alerts, e.compositeAlert(t, triggered, hoursToRes))
	}

	for _, a := range alerts {
		pos := e.RecommendPosition(a.AdjustedConfidence, t.Price, e.cfg.DefaultBankrollUSD)
		a.Position = &pos
		metrics.RecordAlertEmitted(string(a.Kind), string(a.Severity), a.AdjustedConfidence)
	}

	e.updateDayTraderFlag(ctx, t.Wallet)

	return alerts, nil
}

// marketMeta returns the cached question text and end date for a market,
// falling back to the store on a cache miss. A market the store has never
// seen yields empty metadata (classified NORMAL, default urgency).
func (e *Engine) marketMeta(ctx context.Context, conditionID string) marketMeta {
	if meta, ok := e.marketMetas.Get(conditionID); ok {
		metrics.RecordCacheLookup("market_meta", true)
		return meta
	}
	metrics.RecordCacheLookup("market_meta", false)

	var meta marketMeta
	market, err := e.store.GetMarket(ctx, conditionID)
	if err != nil {
		e.log.WithError(err).WithField("condition_id", conditionID).
			Warn("Market lookup failed, using empty metadata")
		return meta
	}
	if market != nil {
		meta.question = market.Question
		meta.endDateTS = market.EndDate
	}
	e.marketMetas.Set(conditionID, meta)
	return meta
}

func (e *Engine) hoursToResolution(endDateTS int64) float64 {
	if endDateTS == 0 {
		return defaultHoursToRes
	}
	return time.Unix(endDateTS, 0).Sub(e.now()).Hours()
}

// updateDayTraderFlag recomputes and persists the wallet-level day trader
// label. Informational only: it does not gate any detector. Best effort.
func (e *Engine) updateDayTraderFlag(ctx context.Context, wallet string) {
	since := e.now().Add(-churnWindow).Unix()
	stats, err := e.store.GetWalletWindowStats(ctx, wallet, since)
	if err != nil {
		e.log.WithError(err).WithField("wallet", wallet).Debug("Day trader stats lookup failed")
		return
	}
	if err := e.store.SetDayTraderFlag(ctx, wallet, isDayTrader(stats)); err != nil {
		e.log.WithError(err).WithField("wallet", wallet).Debug("Day trader flag update failed")
	}
}

func clampConfidence(v float64) float64 {
	if v > maxConfidence {
		return maxConfidence
	}
	if v < 0 {
		return 0
	}
	return v
}

func shortWallet(wallet string) string {
	if len(wallet) <= 10 {
		return wallet
	}
	return wallet[:10] + "..."
}
