package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/notify"
	"github.com/hamed0406/outboundcheck/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

type Alerter struct {
	logger   *zap.Logger
	checks   repo.CheckStore
	alertDB  repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	now      func() time.Time
}

func NewAlerter(
	logger *zap.Logger,
	checks repo.CheckStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	cfg AlerterConfig,
) *Alerter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Alerter{
		logger:   logger,
		checks:   checks,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	a.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.scan(ctx)
		}
	}
}

func (a *Alerter) scan(ctx context.Context) {
	if err := a.scanOnce(ctx); err != nil {
		a.logger.Warn("alerter_scan_error", zap.Error(err))
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.checks.List(ctx)
	if err != nil {
		return err
	}

	now := a.now()

	for _, r := range rows {
		if !r.State.Terminal() {
			continue
		}
		rec, err := a.alertDB.Get(ctx, r.Code)
		if err != nil {
			return err
		}

		stateChanged := rec == nil || rec.LastState != string(r.State)

		// Cooldown only matters for failure alerts.
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		failed := r.State == domain.CheckError
		downAlert := stateChanged && failed && cooled
		// A first success is not a recovery.
		recoveryAlert := stateChanged && !failed && rec != nil && a.cfg.AlertOnRecovery

		if downAlert || recoveryAlert {
			title := "🔴 " + r.Title + " failed"
			if !failed {
				title = "🟢 " + r.Title + " recovered"
			}
			if err := a.notifier.Send(ctx, title, notify.FormatResult(r)); err != nil {
				a.logger.Warn("alert_send_error", zap.String("code", r.Code), zap.Error(err))
			} else {
				a.logger.Info("alert_sent", zap.String("code", r.Code), zap.String("state", string(r.State)))
			}
			if err := a.alertDB.Set(ctx, r.Code, string(r.State), now); err != nil {
				return err
			}
			continue
		}

		// Record the new state even when nothing was sent.
		if stateChanged {
			var sentAt time.Time
			if rec != nil && rec.LastSentAt != nil {
				sentAt = *rec.LastSentAt
			}
			if err := a.alertDB.Set(ctx, r.Code, string(r.State), sentAt); err != nil {
				return err
			}
		}
	}

	return nil
}
