package alerts

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender sends alerts to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the alert
func (s *LogSender) Send(ctx context.Context, payload *AlertPayload) error {
	s.log.WithFields(logrus.Fields{
		"kind":            payload.Kind,
		"severity":        payload.Severity,
		"wallet":          payload.WalletShort,
		"market":          payload.MarketTitle,
		"notional_usd":    payload.NotionalUSD,
		"confidence":      payload.Confidence,
		"recommended_usd": payload.RecommendedUSD,
	}).Info("Alert generated")
	return nil
}
