package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hamed0406/outboundcheck/internal/clashapi"
	"github.com/hamed0406/outboundcheck/internal/config"
	"github.com/hamed0406/outboundcheck/internal/diagnostic"
	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/httpapi"
	apimw "github.com/hamed0406/outboundcheck/internal/httpapi/middleware"
	"github.com/hamed0406/outboundcheck/internal/i18n"
	"github.com/hamed0406/outboundcheck/internal/logging"
	"github.com/hamed0406/outboundcheck/internal/metrics"
	"github.com/hamed0406/outboundcheck/internal/notify"
	"github.com/hamed0406/outboundcheck/internal/probe"
	"github.com/hamed0406/outboundcheck/internal/repo/memory"
	"github.com/hamed0406/outboundcheck/internal/scheduler"
	"github.com/hamed0406/outboundcheck/internal/sections"
)

func main() {
	_ = godotenv.Load() // optional .env next to the binary

	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogStderr)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	api := clashapi.New(cfg.ClashAPIURL, cfg.ClashAPISecret)
	api.ProbeURL = cfg.ProbeURL
	api.ProbeTimeout = cfg.ProbeTimeout

	var client probe.Client = probe.NewClashClient(api)
	// Each attempt gets the controller timeout plus slack to hear its answer.
	retry := &probe.RetryClient{
		Inner:          client,
		Attempts:       cfg.RetryAttempts,
		Backoff:        cfg.RetryBackoff,
		AttemptTimeout: cfg.ProbeTimeout + time.Second,
	}
	client = retry
	client = &probe.InstrumentedClient{Inner: client, Metrics: m}

	var src sections.Source
	if cfg.SectionsFile != "" {
		src = sections.NewFileSource(cfg.SectionsFile)
	} else {
		src = sections.NewClashSource(api, cfg.Sections)
	}

	tr := i18n.New(cfg.Lang)
	store := memory.New()
	prober := diagnostic.NewProber(client, tr, retry.Budget())
	runner := diagnostic.NewRunner(logger, src, prober, store, tr, m, cfg.MaxConcurrency)

	rc := scheduler.NewRechecker(logger, runner, cfg.CheckInterval, domain.OutboundsCheck)
	go rc.Run(ctx)

	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		al := scheduler.NewAlerter(logger, store, store.Alerts(), notify.Multi{slack}, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			PollInterval:    15 * time.Second,
		})
		go func() { _ = al.Run(ctx) }()
		logger.Info("alerter_enabled", zap.Duration("cooldown", cfg.AlertCooldown))
	}

	srv := httpapi.NewServer(logger, store, runner, m, domain.OutboundsCheck)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("clash_api", cfg.ClashAPIURL),
		zap.String("lang", tr.Language().String()),
		zap.Duration("check_interval", cfg.CheckInterval),
	)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api_listen_error", zap.Error(err))
		return
	}
	logger.Info("api_stopped")
}
