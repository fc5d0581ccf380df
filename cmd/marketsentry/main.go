package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/marketsentry/marketsentry/internal/alerts"
	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/engine"
	"github.com/marketsentry/marketsentry/internal/ingest"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/polymarket/dataapi"
	"github.com/marketsentry/marketsentry/internal/polymarket/gammaapi"
	"github.com/marketsentry/marketsentry/internal/storage"
	"github.com/marketsentry/marketsentry/internal/tracker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.Info("Starting marketsentry service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"environment":       cfg.Environment,
		"fetch_min_usd":     cfg.FetchMinUSD,
		"fresh_max_age_h":   cfg.FreshWalletMaxAgeHours,
		"poll_interval_sec": cfg.PollIntervalSec,
		"resolution_period": cfg.ResolutionPeriod.String(),
		"alert_mode":        cfg.AlertMode,
	}).Info("Configuration loaded")

	// Initialize database
	db, err := storage.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	log.Info("Database connected")

	// Run auto-migration
	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("Failed to run database migrations")
	}

	log.Info("Database migrations complete")

	// Initialize API clients
	dataClient := dataapi.NewClient(cfg)
	gammaClient := gammaapi.NewClient(cfg)

	log.Info("API clients initialized")

	// Initialize alert sender
	alertSender := createAlertSender(cfg, log)

	log.WithField("alert_mode", cfg.AlertMode).Info("Alert sender initialized")

	// Wire the intelligence engine to storage and the wallet-age oracle
	eng := engine.New(db, dataClient, cfg, log)
	ing := ingest.New(cfg, db, dataClient, gammaClient, eng, alertSender, log)
	trk := tracker.New(cfg, db, gammaClient, log)

	// Start HTTP server (health + metrics)
	go startHTTPServer(cfg.HealthPort, log)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pollTicker := time.NewTicker(time.Duration(cfg.PollIntervalSec) * time.Second)
	defer pollTicker.Stop()

	resolutionTicker := time.NewTicker(cfg.ResolutionPeriod)
	defer resolutionTicker.Stop()

	log.Info("Starting trade ingestion loop")

	// Process immediately on startup
	if err := ing.Poll(ctx); err != nil {
		log.WithError(err).Error("Error polling trades")
	}

	// Resolution tracking on startup (async)
	go func() {
		if err := trk.Run(ctx); err != nil {
			log.WithError(err).Error("Error tracking resolutions on startup")
		}
	}()

	for {
		select {
		case <-pollTicker.C:
			if err := ing.Poll(ctx); err != nil {
				log.WithError(err).Error("Error polling trades")
			}
		case <-resolutionTicker.C:
			go func() {
				if err := trk.Run(ctx); err != nil {
					log.WithError(err).Error("Error tracking resolutions")
				}
			}()
		case sig := <-sigChan:
			log.WithField("signal", sig).Info("Received shutdown signal")
			cancel()
			log.Info("Graceful shutdown complete")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, shutting down")
			return
		}
	}
}

func createAlertSender(cfg *config.Config, log *logrus.Logger) alerts.Sender {
	modes := strings.Split(cfg.AlertMode, ",")
	for i, mode := range modes {
		modes[i] = strings.TrimSpace(mode)
	}

	var senders []alerts.Sender
	for _, mode := range modes {
		switch mode {
		case "log":
			senders = append(senders, alerts.NewLogSender(log))
		case "discord":
			if cfg.DiscordWebhookURL != "" {
				senders = append(senders, alerts.NewDiscordSender(cfg.DiscordWebhookURL))
			} else {
				log.Warn("Discord mode specified but DISCORD_WEBHOOK_URL not set")
			}
		case "smtp":
			if cfg.SMTPHost != "" {
				senders = append(senders, alerts.NewSMTPSender(
					cfg.SMTPHost,
					cfg.SMTPPort,
					cfg.SMTPUser,
					cfg.SMTPPassword,
					cfg.SMTPFrom,
					cfg.SMTPTo,
				))
			} else {
				log.Warn("SMTP mode specified but SMTP_HOST not set")
			}
		default:
			log.WithField("mode", mode).Warn("Unknown alert mode, skipping")
		}
	}

	if len(senders) == 0 {
		log.Warn("No valid alert senders configured, using log")
		return alerts.NewLogSender(log)
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return alerts.NewMultiSender(senders...)
}

func startHTTPServer(port int, log *logrus.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready"}`)
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.WithField("port", port).Info("Starting HTTP server (health + metrics)")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("HTTP server failed")
	}
}
