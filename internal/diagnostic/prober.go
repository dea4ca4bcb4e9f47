package diagnostic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/i18n"
	"github.com/hamed0406/outboundcheck/internal/probe"
)

// DirectSentinel is probed when a direct selection carries no code.
const DirectSentinel = "direct-out"

// DefaultProbeTimeout bounds one client call when no timeout is configured.
const DefaultProbeTimeout = 5 * time.Second

// Outcome is the classified result of probing one section.
type Outcome struct {
	Strategy Strategy
	Success  bool
	Text     string
}

// SectionProber probes one section.
type SectionProber interface {
	Probe(ctx context.Context, s domain.Section) Outcome
}

// Prober runs the resolved strategy for a section against a probe.Client.
// Every client call gets its own Timeout; a timeout is a failed probe.
type Prober struct {
	Client     probe.Client
	Translator i18n.Translator
	Timeout    time.Duration
}

// NewProber returns a Prober; a non-positive timeout means DefaultProbeTimeout.
func NewProber(c probe.Client, tr i18n.Translator, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{Client: c, Translator: tr, Timeout: timeout}
}

// Probe resolves the strategy for s and runs it. It never returns an error:
// transport failures, timeouts and bad answers all become a failed Outcome.
func (p *Prober) Probe(ctx context.Context, s domain.Section) Outcome {
	st := Resolve(s)
	var out Outcome
	switch st {
	case StrategyDirectGroup:
		out = p.directGroup(ctx, s)
	case StrategyFastest:
		out = p.fastest(ctx, s)
	case StrategyActive:
		out = p.active(ctx, s)
	case StrategyDirectMember:
		out = p.directMember(ctx, s)
	default:
		out = p.singleMember(ctx, s)
	}
	out.Strategy = st
	return out
}

func (p *Prober) directGroup(ctx context.Context, s domain.Section) Outcome {
	res, ok := p.single(ctx, s.Code)
	if !ok {
		return p.failed("")
	}
	return Outcome{Success: true, Text: fmt.Sprintf("%d ms", res.Delay)}
}

func (p *Prober) fastest(ctx context.Context, s domain.Section) Outcome {
	res, ok := p.group(ctx, s.Code)
	if !ok {
		return p.failed("")
	}
	return Outcome{Success: true, Text: tag(p.t(i18n.Fastest), formatDelays(s, res.Delays))}
}

// active needs two sequential round-trips: the group must answer before
// the selected member is probed on its own.
func (p *Prober) active(ctx context.Context, s domain.Section) Outcome {
	if _, ok := p.group(ctx, s.Code); !ok {
		return p.failed("")
	}
	selected, _ := s.SelectedOutbound()
	res, ok := p.single(ctx, selected.Code)
	if !ok {
		return p.failed(p.t(i18n.Active))
	}
	return Outcome{Success: true, Text: tag(p.t(i18n.Active), fmt.Sprintf("%dms", res.Delay))}
}

func (p *Prober) directMember(ctx context.Context, s domain.Section) Outcome {
	selected, _ := s.SelectedOutbound()
	code := selected.Code
	if code == "" {
		code = DirectSentinel
	}
	name := selected.DisplayName
	if name == "" {
		name = p.t(i18n.Direct)
	}

	res, ok := p.single(ctx, code)
	if !ok {
		return p.failed(name)
	}
	return Outcome{Success: true, Text: tag(name, fmt.Sprintf("%dms", res.Delay))}
}

func (p *Prober) singleMember(ctx context.Context, s domain.Section) Outcome {
	res, ok := p.group(ctx, s.Code)
	if !ok {
		return p.failed("")
	}
	selected, _ := s.SelectedOutbound()
	// Tagged with the display name, or the code for members the source left
	// unnamed (Clash-derived sections); no selection at all stays untagged.
	name := selected.DisplayName
	if name == "" {
		name = selected.Code
	}
	if d, found := res.Delays[selected.Code]; found && d != nil && selected.Code != "" {
		return Outcome{Success: true, Text: tag(name, fmt.Sprintf("%dms", *d))}
	}
	return p.failed(name)
}

func (p *Prober) group(ctx context.Context, code string) (probe.GroupLatency, bool) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	res, err := p.Client.GroupLatency(cctx, code)
	return res, err == nil && res.OK()
}

func (p *Prober) single(ctx context.Context, code string) (probe.OutboundLatency, bool) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	res, err := p.Client.OutboundLatency(cctx, code)
	return res, err == nil && res.OK()
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultProbeTimeout
	}
	return p.Timeout
}

// failed renders "Not responding", tagged with label when there is one.
func (p *Prober) failed(label string) Outcome {
	return Outcome{Success: false, Text: tag(label, p.t(i18n.NotResponding))}
}

func (p *Prober) t(key string) string {
	if p.Translator == nil {
		return key
	}
	return p.Translator.T(key)
}

func tag(label, text string) string {
	if label == "" {
		return text
	}
	return "[" + label + "] " + text
}

// formatDelays renders "code: 12ms / code: n/a" in section member order;
// members the section does not list follow in code order.
func formatDelays(s domain.Section, delays map[string]*int) string {
	if len(delays) == 0 {
		return "n/a"
	}
	codes := make([]string, 0, len(delays))
	seen := make(map[string]bool, len(delays))
	for _, o := range s.Outbounds {
		if _, ok := delays[o.Code]; ok && !seen[o.Code] {
			codes = append(codes, o.Code)
			seen[o.Code] = true
		}
	}
	rest := make([]string, 0, len(delays))
	for code := range delays {
		if !seen[code] {
			rest = append(rest, code)
		}
	}
	sort.Strings(rest)
	codes = append(codes, rest...)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		if d := delays[code]; d != nil {
			parts = append(parts, fmt.Sprintf("%s: %dms", code, *d))
		} else {
			parts = append(parts, code+": n/a")
		}
	}
	return strings.Join(parts, " / ")
}
