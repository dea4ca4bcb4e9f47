package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/repo"
)

const subscriberBuffer = 16

// Store is the process-wide result store. It keeps only the latest result
// per check code and is never persisted.
type Store struct {
	mu     sync.RWMutex
	checks map[string]domain.CheckRunResult
	alerts map[string]repo.AlertRecord
	subs   map[int]chan domain.CheckRunResult
	nextID int
}

func New() *Store {
	return &Store{
		checks: make(map[string]domain.CheckRunResult),
		alerts: make(map[string]repo.AlertRecord),
		subs:   make(map[int]chan domain.CheckRunResult),
	}
}

// ---- CheckStore ----

func (m *Store) Set(ctx context.Context, r domain.CheckRunResult) error {
	r = clone(r)
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[r.Code] = r
	for _, ch := range m.subs {
		publish(ch, clone(r))
	}
	return nil
}

func (m *Store) Get(ctx context.Context, code string) (domain.CheckRunResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.checks[code]
	if !ok {
		return domain.CheckRunResult{}, false, nil
	}
	return clone(r), true, nil
}

func (m *Store) List(ctx context.Context) ([]domain.CheckRunResult, error) {
	m.mu.RLock()
	out := make([]domain.CheckRunResult, 0, len(m.checks))
	for _, r := range m.checks {
		out = append(out, clone(r))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (m *Store) Subscribe() (<-chan domain.CheckRunResult, func()) {
	ch := make(chan domain.CheckRunResult, subscriberBuffer)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish never blocks the writer: a full subscriber loses its oldest
// pending update.
func publish(ch chan domain.CheckRunResult, r domain.CheckRunResult) {
	select {
	case ch <- r:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- r:
	default:
	}
}

func clone(r domain.CheckRunResult) domain.CheckRunResult {
	r.Items = append([]domain.CheckItem(nil), r.Items...)
	if r.Items == nil {
		r.Items = []domain.CheckItem{}
	}
	return r
}

// ---- AlertStore ----

func (m *Store) GetAlert(ctx context.Context, code string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) SetAlert(ctx context.Context, code string, lastState string, sentAt time.Time) error {
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[code] = repo.AlertRecord{Code: code, LastState: lastState, LastSentAt: ts}
	return nil
}

// Alerts adapts the store to repo.AlertStore.
func (m *Store) Alerts() repo.AlertStore { return alertStore{m} }

type alertStore struct{ s *Store }

func (a alertStore) Get(ctx context.Context, code string) (*repo.AlertRecord, error) {
	return a.s.GetAlert(ctx, code)
}

func (a alertStore) Set(ctx context.Context, code string, lastState string, sentAt time.Time) error {
	return a.s.SetAlert(ctx, code, lastState, sentAt)
}

var _ repo.CheckStore = (*Store)(nil)
