package diagnostic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/i18n"
	"github.com/hamed0406/outboundcheck/internal/metrics"
	"github.com/hamed0406/outboundcheck/internal/repo"
	"github.com/hamed0406/outboundcheck/internal/sections"
)

var (
	// ErrSectionsFetch means the section list could not be obtained; no
	// probe was issued.
	ErrSectionsFetch = errors.New("sections checks failed: cannot fetch sections")
	// ErrNoHealthySection means the run completed but no section answered.
	ErrNoHealthySection = errors.New("sections checks failed: no healthy section")
	// ErrRunInProgress is returned when the same check is already running.
	ErrRunInProgress = errors.New("check run already in progress")
	// ErrStoreWrite means the terminal result could not be stored.
	ErrStoreWrite = errors.New("check result not stored")
)

// Runner drives diagnostic runs and writes their results to the store.
// At most one run per check code executes at a time.
type Runner struct {
	Logger         *zap.Logger
	Sections       sections.Source
	Prober         SectionProber
	Store          repo.CheckStore
	Translator     i18n.Translator
	Metrics        *metrics.Metrics
	MaxConcurrency int // 0 probes every section at once

	mu      sync.Mutex
	running map[string]bool
}

func NewRunner(
	logger *zap.Logger,
	src sections.Source,
	prober SectionProber,
	store repo.CheckStore,
	tr i18n.Translator,
	m *metrics.Metrics,
	maxConcurrency int,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Logger:         logger,
		Sections:       src,
		Prober:         prober,
		Store:          store,
		Translator:     tr,
		Metrics:        m,
		MaxConcurrency: maxConcurrency,
		running:        make(map[string]bool),
	}
}

// Run performs one diagnostic run for d. The store ends in a terminal
// state unless the store itself refuses the write, which is reported as
// ErrStoreWrite. The returned error also tells the caller that the sections
// could not be fetched (a panicking source included) or that no section is
// healthy.
func (r *Runner) Run(ctx context.Context, d domain.CheckDescriptor) error {
	if !r.acquire(d.Code) {
		return ErrRunInProgress
	}
	defer r.release(d.Code)

	runID := uuid.NewString()
	log := r.Logger.With(zap.String("check", d.Code), zap.String("run_id", runID))
	base := domain.CheckRunResult{
		Order: d.Order,
		Code:  d.Code,
		Title: r.t(d.Title),
		RunID: runID,
	}
	// Store writes must land even if ctx is cancelled mid-run.
	wctx := context.WithoutCancel(ctx)

	// A failed loading write is logged; the terminal write decides the outcome.
	_ = r.write(wctx, log, finish(base, domain.CheckLoading, r.t(i18n.Checking), nil))
	log.Info("run_started")
	start := time.Now()

	secs, err := r.fetch(ctx)
	if err != nil {
		log.Warn("sections_fetch_error", zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrSectionsFetch, err)
		if werr := r.write(wctx, log, finish(base, domain.CheckError, r.t(i18n.CannotReceive), nil)); werr != nil {
			err = multierr.Append(err, werr)
		}
		return err
	}

	items := r.probeAll(ctx, log, secs)
	allGood, atLeastOneGood := Summarize(items)
	state, desc := Meta(atLeastOneGood, allGood)
	werr := r.write(wctx, log, finish(base, state, r.t(desc), items))

	log.Info("run_finished",
		zap.String("state", string(state)),
		zap.Int("sections", len(items)),
		zap.Bool("all_good", allGood),
		zap.Duration("took", time.Since(start)),
	)
	if !atLeastOneGood {
		return multierr.Append(ErrNoHealthySection, werr)
	}
	return werr
}

// fetch turns a panicking source into an error.
func (r *Runner) fetch(ctx context.Context) ([]domain.Section, error) {
	var (
		secs []domain.Section
		err  error
		pc   panics.Catcher
	)
	pc.Try(func() { secs, err = r.Sections.Fetch(ctx) })
	if rec := pc.Recovered(); rec != nil {
		return nil, rec.AsError()
	}
	return secs, err
}

// probeAll fans out one task per section and returns items in section
// order regardless of completion order.
func (r *Runner) probeAll(ctx context.Context, log *zap.Logger, secs []domain.Section) []domain.CheckItem {
	limit := r.MaxConcurrency
	if limit <= 0 || limit > len(secs) {
		limit = len(secs)
	}
	if limit < 1 {
		limit = 1
	}
	mapper := iter.Mapper[domain.Section, domain.CheckItem]{MaxGoroutines: limit}
	return mapper.Map(secs, func(s *domain.Section) domain.CheckItem {
		return r.probeSection(ctx, log, *s)
	})
}

// probeSection never panics: a panicking probe becomes an error item.
func (r *Runner) probeSection(ctx context.Context, log *zap.Logger, s domain.Section) domain.CheckItem {
	var (
		out Outcome
		pc  panics.Catcher
	)
	pc.Try(func() { out = r.Prober.Probe(ctx, s) })
	if rec := pc.Recovered(); rec != nil {
		log.Error("section_probe_panic",
			zap.String("section", s.Code),
			zap.Error(rec.AsError()),
		)
		out = Outcome{Strategy: Resolve(s), Success: false, Text: r.t(i18n.NotResponding)}
	}

	log.Debug("section_probed",
		zap.String("section", s.Code),
		zap.String("strategy", out.Strategy.String()),
		zap.Bool("success", out.Success),
		zap.String("value", out.Text),
	)

	key := s.DisplayName
	if key == "" {
		key = s.Code
	}
	state := domain.ItemError
	if out.Success {
		state = domain.ItemSuccess
	}
	return domain.CheckItem{State: state, Key: key, Value: out.Text}
}

func (r *Runner) write(ctx context.Context, log *zap.Logger, res domain.CheckRunResult) error {
	if err := r.Store.Set(ctx, res); err != nil {
		log.Error("store_write_error", zap.String("state", string(res.State)), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrStoreWrite, res.State, err)
	}
	r.Metrics.ObserveRun(res)
	return nil
}

func (r *Runner) acquire(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running == nil {
		r.running = make(map[string]bool)
	}
	if r.running[code] {
		return false
	}
	r.running[code] = true
	return true
}

func (r *Runner) release(code string) {
	r.mu.Lock()
	delete(r.running, code)
	r.mu.Unlock()
}

func (r *Runner) t(key string) string {
	if r.Translator == nil {
		return key
	}
	return r.Translator.T(key)
}

func finish(base domain.CheckRunResult, state domain.CheckState, desc string, items []domain.CheckItem) domain.CheckRunResult {
	base.State = state
	base.Description = desc
	base.Items = items
	if base.Items == nil {
		base.Items = []domain.CheckItem{}
	}
	base.UpdatedAt = time.Now().UTC()
	return base
}
