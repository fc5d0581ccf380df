package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/marketsentry/marketsentry/internal/classify"
)

// detectFreshWallet flags significant trades from wallets with little or no
// platform history. A brand-new account immediately placing a large bet is
// the strongest single insider signal the system has.
//
// Wallet age comes preferentially from the authoritative oracle (the
// wallet's true first trade on the platform); local first-seen is only a
// fallback, since ingestion may have started tracking the wallet long after
// it began trading. When the oracle shows the wallet as older than local
// storage believes, the local timestamp is corrected backward and no alert
// is emitted.
func (e *Engine) detectFreshWallet(ctx context.Context, t Trade, cat classify.Category) (*Alert, error) {
	if t.ValueUSD < e.cfg.FreshWalletMinUSD {
		return nil, nil
	}
	// Gambling markets have no informational edge; a fresh wallet betting
	// on a coin flip is just a gambler.
	if cat == classify.Gambling {
		return nil, nil
	}

	since := e.now().Add(-churnWindow).Unix()
	activity, err := e.store.GetPairActivity(ctx, t.Wallet, t.ConditionID, since)
	if err != nil {
		return nil, fmt.Errorf("pair activity: %w", err)
	}
	if isChurningPair(activity) {
		return nil, nil
	}

	wallet, err := e.store.GetWallet(ctx, t.Wallet)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	// No local record at all: maximally fresh, first trade ever.
	if wallet == nil {
		return e.freshAlert(t, 0.95, 0, true), nil
	}

	localFirst := time.Unix(wallet.FirstSeenTS, 0)
	ageHours := e.now().Sub(localFirst).Hours()
	firstTradeEver := wallet.TotalTrades == 0

	oracleFirst, oracleErr := e.oracle.FirstTradeAt(ctx, t.Wallet)
	if oracleErr != nil {
		e.log.WithError(oracleErr).WithField("wallet", t.Wallet).
			Debug("Wallet age oracle unreachable, using local first-seen")
	} else if oracleFirst.IsZero() {
		// Oracle has no trade history for this wallet: truly fresh.
		ageHours = 0
		firstTradeEver = true
	} else if oracleFirst.Before(localFirst) {
		// Local storage under-reports the wallet's age. Trust the oracle,
		// correct local state backward, and do not alert.
		first := reconcileFirstSeen(wallet.FirstSeenTS, oracleFirst.Unix())
		if err := e.store.CorrectWalletFirstSeen(ctx, t.Wallet, first); err != nil {
			e.log.WithError(err).WithField("wallet", t.Wallet).
				Warn("First-seen correction failed")
		}
		return nil, nil
	} else {
		ageHours = e.now().Sub(oracleFirst).Hours()
	}
	if ageHours < 0 {
		ageHours = 0
	}

	if ageHours >= e.cfg.FreshWalletMaxAgeHours {
		return nil, nil
	}

	confidence := 0.5
	switch {
	case ageHours < 1:
		confidence += 0.3
	case ageHours < 12:
		confidence += 0.2
	case ageHours < 24:
		confidence += 0.1
	}
	switch {
	case t.ValueUSD > 10000:
		confidence += 0.2
	case t.ValueUSD > 5000:
		confidence += 0.15
	case t.ValueUSD > 2000:
		confidence += 0.1
	}
	if firstTradeEver {
		confidence += 0.15
	}
	// More than half of lifetime volume once this trade lands.
	if t.ValueUSD > wallet.TotalVolumeUSD {
		confidence += 0.1
	}
	confidence = clampConfidence(confidence)

	if confidence < 0.70 {
		return nil, nil
	}

	return e.freshAlert(t, confidence, ageHours, firstTradeEver), nil
}

func (e *Engine) freshAlert(t Trade, confidence, ageHours float64, firstTradeEver bool) *Alert {
	severity := SeverityHigh
	if confidence >= 0.85 {
		severity = SeverityCritical
	}

	return &Alert{
		Kind:        KindCriticalFresh,
		Severity:    severity,
		Wallet:      t.Wallet,
		ConditionID: t.ConditionID,
		Title:       "Fresh wallet placing significant bet",
		Description: fmt.Sprintf("Wallet %s is %.1fh old and just placed a $%.0f bet. Extremely high insider probability.",
			shortWallet(t.Wallet), ageHours, t.ValueUSD),
		Confidence: confidence,
		SupportingData: map[string]interface{}{
			"wallet_age_hours": ageHours,
			"trade_value_usd":  t.ValueUSD,
			"first_trade_ever": firstTradeEver,
		},
	}
}

// reconcileFirstSeen resolves a disagreement between local storage and the
// age oracle. Policy: first-seen only ever moves backward in time.
func reconcileFirstSeen(localTS, oracleTS int64) int64 {
	if oracleTS > 0 && oracleTS < localTS {
		return oracleTS
	}
	return localTS
}
