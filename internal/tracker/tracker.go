// Package tracker closes the feedback loop. It watches for markets that
// have resolved, scores every alert that fired on them, and promotes or
// demotes wallet profiles based on their signal track record. The engine's
// proven-winner detector reads what this package writes.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/polymarket/gammaapi"
	"github.com/marketsentry/marketsentry/internal/storage"
	"github.com/sirupsen/logrus"
)

// evaluationStakeUSD is the notional stake used to score what an alert
// would have returned had it been followed.
const evaluationStakeUSD = 100.0

// Profile tier thresholds. A wallet needs a real sample before being
// promoted or demoted.
const (
	tierMinSignals       = 5
	tierPriorityAccuracy = 0.70
	tierIgnoreAccuracy   = 0.40
)

// Tracker resolves markets and scores past alerts
type Tracker struct {
	cfg         *config.Config
	db          *storage.DB
	gammaClient *gammaapi.Client
	log         *logrus.Logger
}

// New creates a new tracker
func New(cfg *config.Config, db *storage.DB, gammaClient *gammaapi.Client, log *logrus.Logger) *Tracker {
	return &Tracker{
		cfg:         cfg,
		db:          db,
		gammaClient: gammaClient,
		log:         log,
	}
}

// Run checks for newly resolved markets and updates wallet performance,
// alert outcomes, and wallet profiles.
func (t *Tracker) Run(ctx context.Context) error {
	start := time.Now()
	t.log.Info("Starting resolution tracking run")

	pending, err := t.db.MarketsPendingResolution(ctx, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("pending markets: %w", err)
	}

	t.log.WithField("markets", len(pending)).Info("Checking markets for resolution")

	resolvedCount := 0
	for _, market := range pending {
		remote, err := t.gammaClient.GetMarketByConditionID(ctx, market.ConditionID)
		if err != nil {
			t.log.WithError(err).WithField("condition_id", market.ConditionID).Debug("Failed to fetch market")
			continue
		}
		if !remote.Closed {
			continue
		}

		winner := t.determineWinner(remote.Outcomes, remote.OutcomePrices)
		if winner == "" {
			t.log.WithFields(logrus.Fields{
				"condition_id": market.ConditionID,
				"market":       remote.Question,
				"outcomes":     remote.Outcomes,
				"prices":       remote.OutcomePrices,
			}).Debug("Could not determine winner")
			continue
		}

		if err := t.db.SetMarketResolution(ctx, market.ConditionID, winner); err != nil {
			t.log.WithError(err).Error("Failed to store resolution")
			continue
		}

		if err := t.updateWalletStats(ctx, market.ConditionID, winner); err != nil {
			t.log.WithError(err).Error("Failed to update wallet stats")
		}
		if err := t.scoreAlerts(ctx, market.ConditionID, winner); err != nil {
			t.log.WithError(err).Error("Failed to score alerts")
		}
		if err := t.updateProfiles(ctx, market.ConditionID); err != nil {
			t.log.WithError(err).Error("Failed to update wallet profiles")
		}

		resolvedCount++
		t.log.WithFields(logrus.Fields{
			"condition_id":    market.ConditionID,
			"market":          remote.Question,
			"winning_outcome": winner,
		}).Info("Resolved market and scored signals")
	}

	t.log.WithField("resolved_count", resolvedCount).Info("Resolution tracking run complete")
	metrics.RecordResolutionRun(time.Since(start), resolvedCount)
	return nil
}

// determineWinner parses outcome prices to find the winning outcome
func (t *Tracker) determineWinner(outcomes, outcomePrices string) string {
	if outcomes == "" || outcomePrices == "" {
		return ""
	}

	var outcomeList []string
	var priceList []string

	if err := json.Unmarshal([]byte(outcomes), &outcomeList); err != nil {
		t.log.WithError(err).WithField("outcomes", outcomes).Warn("Failed to parse outcomes JSON")
		return ""
	}
	if err := json.Unmarshal([]byte(outcomePrices), &priceList); err != nil {
		t.log.WithError(err).WithField("prices", outcomePrices).Warn("Failed to parse prices JSON")
		return ""
	}
	if len(outcomeList) != len(priceList) {
		return ""
	}

	// An outcome priced at 0.95+ after close is the winner
	for i, priceStr := range priceList {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}
		if price >= 0.95 {
			return outcomeList[i]
		}
	}

	return "" // No clear winner
}

// updateWalletStats recomputes win rates for every wallet that traded the
// resolved market, based on its net position in the winning outcome.
func (t *Tracker) updateWalletStats(ctx context.Context, conditionID, winningOutcome string) error {
	trades, err := t.db.GetTradesByConditionID(ctx, conditionID)
	if err != nil {
		return fmt.Errorf("get trades: %w", err)
	}

	// Net position per wallet: positive = long the winning outcome
	netPositions := make(map[string]float64)
	for _, trade := range trades {
		long := trade.Side == "BUY"
		onWinner := trade.Outcome == winningOutcome
		if long == onWinner {
			netPositions[trade.ProxyWallet] += trade.NotionalUSD
		} else {
			netPositions[trade.ProxyWallet] -= trade.NotionalUSD
		}
	}

	for walletAddr, net := range netPositions {
		stats, err := t.db.GetWalletStats(ctx, walletAddr)
		if err != nil {
			t.log.WithError(err).WithField("wallet", walletAddr).Warn("Failed to get wallet stats")
			continue
		}
		if stats == nil {
			stats = &storage.WalletStats{WalletAddress: walletAddr}
		}

		stats.TotalResolvedTrades++
		if net > 0 {
			stats.WinningTrades++
		} else if net < 0 {
			stats.LosingTrades++
		}
		// net == 0 means perfectly hedged; neither win nor loss

		if stats.TotalResolvedTrades > 0 {
			stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalResolvedTrades)
		}
		stats.TotalProfitUSD += net
		stats.LastCalculatedTS = time.Now().Unix()

		if err := t.db.UpsertWalletStats(ctx, stats); err != nil {
			t.log.WithError(err).WithField("wallet", walletAddr).Error("Failed to update wallet stats")
			continue
		}

		if err := t.db.UpdateWalletPerformance(ctx, walletAddr, stats.WinRate, stats.TotalProfitUSD); err != nil {
			t.log.WithError(err).WithField("wallet", walletAddr).Error("Failed to update wallet performance")
		}
	}

	return nil
}

// scoreAlerts marks every unscored alert on the resolved market as correct
// or not, with the P&L a fixed evaluation stake would have produced.
func (t *Tracker) scoreAlerts(ctx context.Context, conditionID, winningOutcome string) error {
	pending, err := t.db.AlertsPendingOutcome(ctx, conditionID)
	if err != nil {
		return fmt.Errorf("pending alerts: %w", err)
	}

	for _, alert := range pending {
		long := alert.Side == "BUY"
		onWinner := alert.Outcome == winningOutcome
		correct := long == onWinner

		profit := -evaluationStakeUSD
		if correct {
			// Payout of a winning share position bought at the alert price
			price := alert.Price
			if !long {
				price = 1 - alert.Price
			}
			if price > 0 && price < 1 {
				profit = evaluationStakeUSD * (1 - price) / price
			} else {
				profit = 0
			}
		}

		if err := t.db.SetAlertOutcome(ctx, alert.ID, correct, profit); err != nil {
			t.log.WithError(err).WithField("alert_id", alert.ID).Error("Failed to set alert outcome")
		}
	}

	return nil
}

// updateProfiles folds the newly scored alerts into each wallet's signal
// profile and re-tiers it.
func (t *Tracker) updateProfiles(ctx context.Context, conditionID string) error {
	rows, err := t.db.SignalPerformanceByWallet(ctx, conditionID)
	if err != nil {
		return fmt.Errorf("signal performance: %w", err)
	}

	for _, row := range rows {
		profile, err := t.db.GetWalletProfile(ctx, row.WalletAddress)
		if err != nil {
			t.log.WithError(err).WithField("wallet", row.WalletAddress).Warn("Failed to get profile")
			continue
		}
		if profile == nil {
			profile = &storage.WalletProfile{
				WalletAddress:  row.WalletAddress,
				FollowPriority: storage.TierNormal,
			}
		}

		profile.SignalsGenerated += row.Total
		profile.SignalsProfitable += row.Correct
		if profile.SignalsGenerated > 0 {
			profile.SignalAccuracy = float64(profile.SignalsProfitable) / float64(profile.SignalsGenerated)
		}
		profile.FollowPriority = tierFor(profile.SignalAccuracy, profile.SignalsGenerated)

		if err := t.db.UpsertWalletProfile(ctx, profile); err != nil {
			t.log.WithError(err).WithField("wallet", row.WalletAddress).Error("Failed to update profile")
			continue
		}

		t.log.WithFields(logrus.Fields{
			"wallet":   row.WalletAddress,
			"accuracy": profile.SignalAccuracy,
			"signals":  profile.SignalsGenerated,
			"tier":     profile.FollowPriority,
		}).Info("Updated wallet profile")
	}

	return nil
}

// tierFor assigns a follow-priority tier from a wallet's signal record.
func tierFor(accuracy float64, signals int) string {
	if signals < tierMinSignals {
		return storage.TierNormal
	}
	if accuracy >= tierPriorityAccuracy {
		return storage.TierPriority
	}
	if accuracy < tierIgnoreAccuracy {
		return storage.TierIgnore
	}
	return storage.TierNormal
}
