package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordSender sends alerts to Discord via webhook
type DiscordSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordSender creates a new Discord sender
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send sends the alert to Discord
func (s *DiscordSender) Send(ctx context.Context, payload *AlertPayload) error {
	embed := s.buildEmbed(payload)

	webhookPayload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	body, err := json.Marshal(webhookPayload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (s *DiscordSender) buildEmbed(payload *AlertPayload) map[string]interface{} {
	var color int
	switch payload.Severity {
	case "CRITICAL":
		color = 0xFF0000 // Red
	case "HIGH":
		color = 0xFFA500 // Orange
	default:
		color = 0x0099FF // Blue
	}

	title := fmt.Sprintf("%s %s", severityEmoji(payload.Severity), payload.Title)

	description := fmt.Sprintf("**$%.2f** %s **%s** @ **%.2f**\n%s",
		payload.NotionalUSD,
		payload.Side,
		payload.Outcome,
		payload.Price,
		truncate(payload.Description, 300),
	)

	fields := []map[string]interface{}{
		{
			"name":   "Wallet",
			"value":  fmt.Sprintf("`%s`", payload.WalletShort),
			"inline": true,
		},
		{
			"name":   "Market",
			"value":  truncate(payload.MarketTitle, 100),
			"inline": true,
		},
		{
			"name":   "Signal",
			"value":  payload.Kind,
			"inline": true,
		},
		{
			"name":   "Confidence",
			"value":  fmt.Sprintf("**%.0f%%** (raw %.0f%% + boost %.0f%% × %.2f urgency)", payload.Confidence*100, payload.RawConfidence*100, payload.InsiderBoost*100, payload.UrgencyMultiplier),
			"inline": false,
		},
		{
			"name":   "Resolves In",
			"value":  fmt.Sprintf("%.0f hours", payload.HoursToResolution),
			"inline": true,
		},
		{
			"name":   "Edge",
			"value":  fmt.Sprintf("%.1f%%", payload.EdgePct),
			"inline": true,
		},
	}

	if payload.RecommendedUSD > 0 {
		fields = append(fields, map[string]interface{}{
			"name":   "💰 Suggested Position",
			"value":  fmt.Sprintf("**$%.0f** (%.1f%% of bankroll)\n%s", payload.RecommendedUSD, payload.CappedFraction*100, payload.PositionNote),
			"inline": false,
		})
	}

	footer := map[string]interface{}{
		"text": fmt.Sprintf("MarketSentry • %s • %s", payload.Environment, payload.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")),
	}

	embed := map[string]interface{}{
		"title":       title,
		"url":         payload.MarketURL,
		"description": description,
		"color":       color,
		"fields":      fields,
		"footer":      footer,
		"timestamp":   payload.Timestamp.Format(time.RFC3339),
	}

	return embed
}

func severityEmoji(severity string) string {
	switch severity {
	case "CRITICAL":
		return "🚨"
	case "HIGH":
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
