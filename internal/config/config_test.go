package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseDSN:        "user:pass@tcp(localhost:3306)/marketsentry",
		DataAPIAuthMode:    AuthModeNone,
		MaxPositionPct:     0.10,
		DefaultBankrollUSD: 10000,
		AlertMode:          "log",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // empty means valid
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }, "DATABASE_DSN"},
		{
			"bearer without token",
			func(c *Config) { c.DataAPIAuthMode = AuthModeBearer },
			"DATA_API_BEARER_TOKEN",
		},
		{
			"bearer with token",
			func(c *Config) { c.DataAPIAuthMode = AuthModeBearer; c.DataAPIBearerToken = "tok" },
			"",
		},
		{
			"api key without key",
			func(c *Config) { c.DataAPIAuthMode = AuthModeAPIKey },
			"DATA_API_API_KEY",
		},
		{
			"unknown auth mode",
			func(c *Config) { c.DataAPIAuthMode = "oauth" },
			"invalid DATA_API_AUTH_MODE",
		},
		{"zero position cap", func(c *Config) { c.MaxPositionPct = 0 }, "MAX_POSITION_PCT"},
		{"position cap above one", func(c *Config) { c.MaxPositionPct = 1.5 }, "MAX_POSITION_PCT"},
		{"zero bankroll", func(c *Config) { c.DefaultBankrollUSD = 0 }, "DEFAULT_BANKROLL_USD"},
		{
			"discord without webhook",
			func(c *Config) { c.AlertMode = "discord" },
			"DISCORD_WEBHOOK_URL",
		},
		{
			"discord with webhook",
			func(c *Config) { c.AlertMode = "discord"; c.DiscordWebhookURL = "https://discord.example/hook" },
			"",
		},
		{
			"smtp without host",
			func(c *Config) { c.AlertMode = "log,smtp" },
			"SMTP_HOST",
		},
		{
			"smtp without recipients",
			func(c *Config) { c.AlertMode = "smtp"; c.SMTPHost = "mail.example.com" },
			"SMTP_TO",
		},
		{
			"multi mode valid",
			func(c *Config) {
				c.AlertMode = "log, discord, smtp"
				c.DiscordWebhookURL = "https://discord.example/hook"
				c.SMTPHost = "mail.example.com"
				c.SMTPTo = []string{"alerts@example.com"}
			},
			"",
		},
		{"unknown alert mode", func(c *Config) { c.AlertMode = "pager" }, "invalid ALERT_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
