// Package diagnostic checks the health of configured outbounds: it probes
// every dashboard section concurrently and folds the outcomes into one
// check result.
package diagnostic

import "github.com/hamed0406/outboundcheck/internal/domain"

// Strategy is the probing pattern applied to one section.
type Strategy int

const (
	// StrategyDirectGroup probes the section itself as a single outbound.
	StrategyDirectGroup Strategy = iota
	// StrategyFastest reports every member latency of a URLTest selection.
	StrategyFastest
	// StrategyActive confirms the group, then probes the active member.
	StrategyActive
	// StrategyDirectMember probes the selected direct outbound.
	StrategyDirectMember
	// StrategySingleMember looks the selected member up in a group probe.
	StrategySingleMember
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirectGroup:
		return "direct_group"
	case StrategyFastest:
		return "fastest"
	case StrategyActive:
		return "active"
	case StrategyDirectMember:
		return "direct_member"
	case StrategySingleMember:
		return "single_member"
	default:
		return "unknown"
	}
}

// Resolve picks the strategy for a section from its shape and the type of
// its selected outbound. A selectable section without a selection falls
// through to StrategySingleMember.
func Resolve(s domain.Section) Strategy {
	if !s.WithTagSelect {
		return StrategyDirectGroup
	}
	selected, _ := s.SelectedOutbound()
	switch selected.Type {
	case domain.OutboundURLTest:
		return StrategyFastest
	case domain.OutboundFailover:
		return StrategyActive
	case domain.OutboundDirect:
		return StrategyDirectMember
	case domain.OutboundProxy:
		return StrategySingleMember
	default:
		return StrategySingleMember
	}
}
