// Package ingest polls the Data API for new trades and drives each one
// through the intelligence engine. Persistence happens after analysis: the
// engine scores a trade against the wallet's history as it stood before the
// trade landed.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/marketsentry/marketsentry/internal/alerts"
	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/engine"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/polymarket/dataapi"
	"github.com/marketsentry/marketsentry/internal/polymarket/gammaapi"
	"github.com/marketsentry/marketsentry/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	checkpointKey = "last_processed_ts"
	marketTTLSec  = 86400 // refresh market metadata daily
)

// Ingestor fetches trades and runs them through the engine
type Ingestor struct {
	cfg         *config.Config
	db          *storage.DB
	dataClient  *dataapi.Client
	gammaClient *gammaapi.Client
	eng         *engine.Engine
	alertSender alerts.Sender
	workerPool  chan struct{}
	log         *logrus.Logger
	walletLocks sync.Map // Per-wallet locks to prevent duplicate API calls
}

// New creates a new ingestor
func New(
	cfg *config.Config,
	db *storage.DB,
	dataClient *dataapi.Client,
	gammaClient *gammaapi.Client,
	eng *engine.Engine,
	alertSender alerts.Sender,
	log *logrus.Logger,
) *Ingestor {
	workerPool := make(chan struct{}, cfg.IngestWorkers)
	for i := 0; i < cfg.IngestWorkers; i++ {
		workerPool <- struct{}{}
	}

	return &Ingestor{
		cfg:         cfg,
		db:          db,
		dataClient:  dataClient,
		gammaClient: gammaClient,
		eng:         eng,
		alertSender: alertSender,
		workerPool:  workerPool,
		log:         log,
	}
}

// Poll fetches new trades since the last checkpoint and processes them
func (in *Ingestor) Poll(ctx context.Context) error {
	lastProcessedStr, err := in.db.GetState(ctx, checkpointKey)
	if err != nil {
		return fmt.Errorf("get checkpoint: %w", err)
	}

	var lastProcessedTS int64
	if lastProcessedStr != "" {
		lastProcessedTS, _ = strconv.ParseInt(lastProcessedStr, 10, 64)
	}

	resp, err := in.dataClient.GetTrades(ctx, dataapi.TradeParams{
		Limit:        10000,
		TakerOnly:    true,
		FilterType:   "CASH",
		FilterAmount: in.cfg.FetchMinUSD,
	})
	if err != nil {
		return fmt.Errorf("fetch trades: %w", err)
	}

	in.log.WithFields(logrus.Fields{
		"count":             len(resp.Trades),
		"last_processed_ts": lastProcessedTS,
	}).Info("Fetched trades from Data API")

	var wg sync.WaitGroup
	for _, trade := range resp.Trades {
		if trade.Timestamp <= lastProcessedTS {
			continue
		}

		wg.Add(1)
		go func(t dataapi.Trade) {
			defer wg.Done()

			<-in.workerPool
			defer func() { in.workerPool <- struct{}{} }()

			if err := in.processTrade(ctx, &t); err != nil {
				in.log.WithError(err).WithField("trade_hash", tradeHash(&t)).Error("Failed to process trade")
				metrics.TradesProcessed.WithLabelValues("error").Inc()
			}
		}(trade)
	}
	wg.Wait()

	// Advance checkpoint
	maxTS := lastProcessedTS
	for _, trade := range resp.Trades {
		if trade.Timestamp > maxTS {
			maxTS = trade.Timestamp
		}
	}
	if maxTS > lastProcessedTS {
		if err := in.db.SetState(ctx, checkpointKey, strconv.FormatInt(maxTS, 10)); err != nil {
			in.log.WithError(err).Error("Failed to update checkpoint")
		}
	}

	return nil
}

func (in *Ingestor) processTrade(ctx context.Context, trade *dataapi.Trade) error {
	start := time.Now()

	hash := tradeHash(trade)
	seen, err := in.db.HasTradeSeen(ctx, hash)
	if err != nil {
		return fmt.Errorf("check trade seen: %w", err)
	}
	if seen {
		metrics.TradesProcessed.WithLabelValues("duplicate").Inc()
		return nil
	}

	if trade.Side != "BUY" && trade.Side != "SELL" {
		in.log.WithField("side", trade.Side).Warn("Invalid trade side, skipping")
		metrics.TradesProcessed.WithLabelValues("filtered").Inc()
		return nil
	}
	if trade.Outcome == "" {
		in.log.Warn("Missing trade outcome, skipping")
		metrics.TradesProcessed.WithLabelValues("filtered").Inc()
		return nil
	}

	notional := calculateNotional(trade)
	if notional < in.cfg.FetchMinUSD {
		metrics.TradesProcessed.WithLabelValues("filtered").Inc()
		return nil
	}

	market, err := in.resolveMarket(ctx, trade)
	if err != nil {
		in.log.WithError(err).WithField("condition_id", trade.ConditionID).
			Warn("Market resolve failed, analyzing without metadata")
	}

	// Score the trade before it lands in storage, so every detector sees
	// the wallet's history as of just before this trade.
	engineAlerts, err := in.eng.Analyze(ctx, engine.Trade{
		Wallet:      trade.ProxyWallet,
		ConditionID: trade.ConditionID,
		ValueUSD:    notional,
		Price:       trade.Price,
		Side:        trade.Side,
		Outcome:     trade.Outcome,
		Timestamp:   time.Unix(trade.Timestamp, 0),
	})
	if err != nil {
		in.log.WithError(err).Error("Engine analysis failed")
	}

	if len(engineAlerts) > 0 {
		in.dispatchAlerts(ctx, trade, market, notional, engineAlerts)
	}

	// Persist the trade and roll it into the wallet record.
	if err := in.db.InsertTrade(ctx, &storage.TradeSeen{
		TradeHash:       hash,
		TransactionHash: trade.TransactionHash,
		ConditionID:     trade.ConditionID,
		ProxyWallet:     trade.ProxyWallet,
		TimestampSec:    trade.Timestamp,
		NotionalUSD:     notional,
		Side:            trade.Side,
		Outcome:         trade.Outcome,
		Price:           trade.Price,
	}); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}

	if err := in.rollIntoWallet(ctx, trade, notional); err != nil {
		in.log.WithError(err).Error("Failed to update wallet record")
	}

	metrics.RecordTradeProcessed(time.Since(start), "success")
	return nil
}

// dispatchAlerts persists every alert the engine produced for one trade and
// sends notifications, unless the wallet/market pair alerted within the
// cooldown window. Cooldown suppresses delivery only; rows are always
// persisted so the resolution tracker can still score them.
func (in *Ingestor) dispatchAlerts(ctx context.Context, trade *dataapi.Trade, market *storage.Market, notional float64, engineAlerts []*engine.Alert) {
	coolingDown := false
	last, err := in.db.GetLastAlertForPair(ctx, trade.ProxyWallet, trade.ConditionID)
	if err != nil {
		in.log.WithError(err).Warn("Cooldown lookup failed, sending anyway")
	}
	if last != nil && time.Since(time.Unix(last.CreatedTS, 0)) < in.cfg.AlertCooldown {
		coolingDown = true
		metrics.AlertsSuppressed.Inc()
		in.log.WithFields(logrus.Fields{
			"wallet":       trade.ProxyWallet,
			"condition_id": trade.ConditionID,
		}).Debug("Alert notifications suppressed by cooldown")
	}

	for _, a := range engineAlerts {
		supporting, _ := json.Marshal(a.SupportingData)
		record := &storage.Alert{
			AlertKind:         string(a.Kind),
			Severity:          string(a.Severity),
			WalletAddress:     a.Wallet,
			ConditionID:       a.ConditionID,
			Title:             a.Title,
			Description:       a.Description,
			Side:              trade.Side,
			Outcome:           trade.Outcome,
			NotionalUSD:       notional,
			Price:             trade.Price,
			RawConfidence:     a.Confidence,
			InsiderBoost:      a.InsiderBoost,
			UrgencyMultiplier: a.UrgencyMultiplier,
			Confidence:        a.AdjustedConfidence,
			HoursToResolution: a.HoursToResolution,
			SupportingData:    string(supporting),
			TradeTimestampSec: trade.Timestamp,
		}
		if a.Position != nil {
			record.RecommendedUSD = a.Position.RecommendedUSD
			record.KellyFraction = a.Position.KellyFraction
			record.HalfKelly = a.Position.HalfKelly
			record.CappedFraction = a.Position.CappedFraction
			record.EdgePct = a.Position.EdgePct
			record.BankrollUSD = a.Position.BankrollUSD
		}
		if _, err := in.db.InsertAlert(ctx, record); err != nil {
			in.log.WithError(err).Error("Failed to persist alert")
		}

		if coolingDown {
			continue
		}
		payload := in.buildPayload(trade, market, notional, a)
		if err := in.alertSender.Send(ctx, payload); err != nil {
			in.log.WithError(err).Error("Failed to send alert")
			metrics.RecordAlertSent("error", string(a.Kind))
		} else {
			metrics.RecordAlertSent("success", string(a.Kind))
		}
	}
}

func (in *Ingestor) buildPayload(trade *dataapi.Trade, market *storage.Market, notional float64, a *engine.Alert) *alerts.AlertPayload {
	payload := &alerts.AlertPayload{
		Kind:              string(a.Kind),
		Severity:          string(a.Severity),
		WalletAddress:     a.Wallet,
		WalletShort:       shortenAddress(a.Wallet),
		Side:              trade.Side,
		Outcome:           trade.Outcome,
		NotionalUSD:       notional,
		Price:             trade.Price,
		Title:             a.Title,
		Description:       a.Description,
		Confidence:        a.AdjustedConfidence,
		RawConfidence:     a.Confidence,
		InsiderBoost:      a.InsiderBoost,
		UrgencyMultiplier: a.UrgencyMultiplier,
		HoursToResolution: a.HoursToResolution,
		SupportingData:    a.SupportingData,
		Timestamp:         time.Unix(trade.Timestamp, 0),
		Environment:       in.cfg.Environment,
	}
	if market != nil {
		payload.MarketTitle = market.Question
		payload.MarketURL = market.MarketURL
	} else {
		payload.MarketTitle = trade.Title
		payload.MarketURL = fmt.Sprintf("https://polymarket.com/market/%s", trade.Slug)
	}
	if a.Position != nil {
		payload.RecommendedUSD = a.Position.RecommendedUSD
		payload.CappedFraction = a.Position.CappedFraction
		payload.EdgePct = a.Position.EdgePct
		payload.PositionNote = a.Position.Explanation
	}
	return payload
}

// resolveMarket returns the market record, refreshing it from the Gamma API
// when missing or stale.
func (in *Ingestor) resolveMarket(ctx context.Context, trade *dataapi.Trade) (*storage.Market, error) {
	cached, err := in.db.GetMarket(ctx, trade.ConditionID)
	if err != nil {
		return nil, err
	}
	if cached != nil && time.Now().Unix()-cached.UpdatedTS < marketTTLSec {
		return cached, nil
	}

	market, err := in.gammaClient.GetMarketByConditionID(ctx, trade.ConditionID)
	if err != nil {
		// Fall back to what the trade itself carries
		if cached != nil {
			return cached, nil
		}
		if trade.Title == "" && trade.Slug == "" {
			return nil, err
		}
		record := &storage.Market{
			ConditionID: trade.ConditionID,
			MarketSlug:  trade.Slug,
			Question:    trade.Title,
			MarketURL:   fmt.Sprintf("https://polymarket.com/market/%s", trade.Slug),
			IsActive:    true,
		}
		if upsertErr := in.db.UpsertMarket(ctx, record); upsertErr != nil {
			in.log.WithError(upsertErr).Error("Failed to cache market")
		}
		return record, nil
	}

	var endDate int64
	if market.EndDate != "" {
		if endTime, parseErr := time.Parse(time.RFC3339, market.EndDate); parseErr == nil {
			endDate = endTime.Unix()
		}
	}

	record := &storage.Market{
		ConditionID:  trade.ConditionID,
		MarketSlug:   market.Slug,
		Question:     market.Question,
		MarketURL:    fmt.Sprintf("https://polymarket.com/market/%s", market.Slug),
		Category:     market.Category,
		EndDate:      endDate,
		VolumeNum:    market.VolumeNum,
		LiquidityNum: market.LiquidityNum,
		IsActive:     market.Active,
	}
	if cached != nil {
		// Keep resolution state written by the tracker
		record.WinningOutcome = cached.WinningOutcome
		record.ResolvedTS = cached.ResolvedTS
	}
	if err := in.db.UpsertMarket(ctx, record); err != nil {
		in.log.WithError(err).Error("Failed to cache market")
	}
	return record, nil
}

// rollIntoWallet creates or updates the wallet record after a trade is
// persisted. New wallets get their first-seen timestamp from the Data API's
// activity feed when reachable.
func (in *Ingestor) rollIntoWallet(ctx context.Context, trade *dataapi.Trade, notional float64) error {
	wallet, err := in.db.GetWallet(ctx, trade.ProxyWallet)
	if err != nil {
		return err
	}

	if wallet == nil {
		// Per-wallet lock so concurrent workers do not race on creation
		lockValue, _ := in.walletLocks.LoadOrStore(trade.ProxyWallet, &sync.Mutex{})
		lock := lockValue.(*sync.Mutex)
		lock.Lock()
		defer lock.Unlock()

		wallet, err = in.db.GetWallet(ctx, trade.ProxyWallet)
		if err != nil {
			return err
		}
		if wallet == nil {
			firstSeenTS := trade.Timestamp
			if first, oErr := in.dataClient.FirstTradeAt(ctx, trade.ProxyWallet); oErr != nil {
				in.log.WithError(oErr).WithField("wallet", trade.ProxyWallet).
					Warn("First activity lookup failed, using trade timestamp")
			} else if !first.IsZero() {
				firstSeenTS = first.Unix()
			}

			return in.db.UpsertWallet(ctx, &storage.Wallet{
				WalletAddress:  trade.ProxyWallet,
				FirstSeenTS:    firstSeenTS,
				TotalTrades:    1,
				TotalVolumeUSD: notional,
				LastActivityTS: trade.Timestamp,
				UpdatedTS:      time.Now().Unix(),
			})
		}
	}

	return in.db.UpsertWallet(ctx, &storage.Wallet{
		WalletAddress:  trade.ProxyWallet,
		TotalTrades:    1, // accumulated by the upsert
		TotalVolumeUSD: notional,
		LastActivityTS: trade.Timestamp,
		UpdatedTS:      time.Now().Unix(),
	})
}

func tradeHash(trade *dataapi.Trade) string {
	// Prefer transaction hash
	if trade.TransactionHash != "" {
		return trade.TransactionHash
	}

	// Fallback to derived hash
	data := fmt.Sprintf("%s:%s:%d:%.6f:%.6f",
		trade.ProxyWallet,
		trade.ConditionID,
		trade.Timestamp,
		trade.Size,
		trade.Price,
	)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func calculateNotional(trade *dataapi.Trade) float64 {
	// Prefer usdcSize
	if trade.USDCSize > 0 {
		return trade.USDCSize
	}
	return trade.Size * trade.Price
}

func shortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
