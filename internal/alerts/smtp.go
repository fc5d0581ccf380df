package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

// SMTPSender sends alerts via email
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, user, password, from string, to []string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
	}
}

// Send sends the alert via email
func (s *SMTPSender) Send(ctx context.Context, payload *AlertPayload) error {
	if len(s.to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	subject := fmt.Sprintf("[%s] %s: $%.2f on %s", payload.Severity, payload.Kind, payload.NotionalUSD, payload.MarketTitle)
	body := s.buildEmailBody(payload)

	message := fmt.Sprintf("From: %s\r\n", s.from)
	message += fmt.Sprintf("To: %s\r\n", s.to[0])
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, s.to, []byte(message))
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (s *SMTPSender) buildEmailBody(payload *AlertPayload) string {
	body := fmt.Sprintf("MARKETSENTRY ALERT - %s (%s)\n", payload.Severity, payload.Kind)
	body += "═══════════════════════════════════════\n\n"
	body += payload.Description + "\n\n"
	body += "TRADE DETAILS\n"
	body += "─────────────────────────────────────\n"
	body += fmt.Sprintf("Notional:       $%.2f\n", payload.NotionalUSD)
	body += fmt.Sprintf("Side:           %s %s\n", payload.Side, payload.Outcome)
	body += fmt.Sprintf("Price:          %.2f\n", payload.Price)
	body += fmt.Sprintf("Market:         %s\n", payload.MarketTitle)
	body += fmt.Sprintf("Market URL:     %s\n\n", payload.MarketURL)
	body += "SIGNAL\n"
	body += "─────────────────────────────────────\n"
	body += fmt.Sprintf("Wallet:          %s\n", payload.WalletAddress)
	body += fmt.Sprintf("Confidence:      %.0f%%\n", payload.Confidence*100)
	body += fmt.Sprintf("  raw %.0f%% + boost %.0f%%, urgency x%.2f\n", payload.RawConfidence*100, payload.InsiderBoost*100, payload.UrgencyMultiplier)
	body += fmt.Sprintf("Resolves in:     %.0f hours\n\n", payload.HoursToResolution)

	if payload.RecommendedUSD > 0 {
		body += "POSITION\n"
		body += "─────────────────────────────────────\n"
		body += fmt.Sprintf("Suggested stake: $%.0f (%.1f%% of bankroll)\n", payload.RecommendedUSD, payload.CappedFraction*100)
		body += fmt.Sprintf("Edge:            %.1f%%\n", payload.EdgePct)
		body += fmt.Sprintf("%s\n\n", payload.PositionNote)
	}

	body += "═══════════════════════════════════════\n"
	body += fmt.Sprintf("Environment: %s\n", payload.Environment)
	body += fmt.Sprintf("Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	body += "\nNote: This system detects suspicious behavior;\n"
	body += "it does NOT prove insider trading.\n"

	return body
}
