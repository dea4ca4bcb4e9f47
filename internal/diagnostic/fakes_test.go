package diagnostic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/probe"
)

type call struct {
	kind string // "group" or "outbound"
	code string
}

// scriptedClient answers from per-code tables and records every call.
// Codes without an entry fail with a transport error.
type scriptedClient struct {
	mu        sync.Mutex
	calls     []call
	groups    map[string]probe.GroupLatency
	outbounds map[string]probe.OutboundLatency
	delay     map[string]time.Duration
	panicOn   map[string]bool
}

func newScripted() *scriptedClient {
	return &scriptedClient{
		groups:    map[string]probe.GroupLatency{},
		outbounds: map[string]probe.OutboundLatency{},
		delay:     map[string]time.Duration{},
		panicOn:   map[string]bool{},
	}
}

var errUnreachable = errors.New("dial tcp 127.0.0.1:9090: connect: connection refused")

func (c *scriptedClient) record(kind, code string) {
	c.mu.Lock()
	c.calls = append(c.calls, call{kind, code})
	c.mu.Unlock()
}

func (c *scriptedClient) wait(ctx context.Context, code string) error {
	d := c.delay[code]
	if d == 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *scriptedClient) GroupLatency(ctx context.Context, code string) (probe.GroupLatency, error) {
	c.record("group", code)
	if c.panicOn[code] {
		panic("boom in " + code)
	}
	if err := c.wait(ctx, code); err != nil {
		return probe.GroupLatency{}, err
	}
	r, ok := c.groups[code]
	if !ok {
		return probe.GroupLatency{}, errUnreachable
	}
	return r, nil
}

func (c *scriptedClient) OutboundLatency(ctx context.Context, code string) (probe.OutboundLatency, error) {
	c.record("outbound", code)
	if c.panicOn[code] {
		panic("boom in " + code)
	}
	if err := c.wait(ctx, code); err != nil {
		return probe.OutboundLatency{}, err
	}
	r, ok := c.outbounds[code]
	if !ok {
		return probe.OutboundLatency{}, errUnreachable
	}
	return r, nil
}

func (c *scriptedClient) Calls() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]call(nil), c.calls...)
}

func ms(v int) *int { return &v }

func okGroup(delays map[string]*int) probe.GroupLatency {
	return probe.GroupLatency{Success: true, Delays: delays}
}

func okOutbound(delay int) probe.OutboundLatency {
	return probe.OutboundLatency{Success: true, Delay: delay}
}

func directSection(code string) domain.Section {
	return domain.Section{Code: code, DisplayName: code + "-name"}
}

func selectSection(code string, outbounds ...domain.Outbound) domain.Section {
	return domain.Section{Code: code, DisplayName: code + "-name", WithTagSelect: true, Outbounds: outbounds}
}

// recordingStore keeps every write in order. With failTerminal set, terminal
// writes are refused with that error.
type recordingStore struct {
	mu           sync.Mutex
	writes       []domain.CheckRunResult
	failTerminal error
}

func (s *recordingStore) Set(ctx context.Context, r domain.CheckRunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTerminal != nil && r.State.Terminal() {
		return s.failTerminal
	}
	s.writes = append(s.writes, r)
	return nil
}

func (s *recordingStore) Get(ctx context.Context, code string) (domain.CheckRunResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.writes) - 1; i >= 0; i-- {
		if s.writes[i].Code == code {
			return s.writes[i], true, nil
		}
	}
	return domain.CheckRunResult{}, false, nil
}

func (s *recordingStore) List(ctx context.Context) ([]domain.CheckRunResult, error) {
	return nil, nil
}

func (s *recordingStore) Subscribe() (<-chan domain.CheckRunResult, func()) {
	ch := make(chan domain.CheckRunResult)
	return ch, func() {}
}

func (s *recordingStore) Writes() []domain.CheckRunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CheckRunResult(nil), s.writes...)
}
