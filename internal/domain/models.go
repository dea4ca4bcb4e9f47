package domain

import (
	"strings"
	"time"
)

// OutboundType is the selection policy of an outbound. The set is closed;
// anything unrecognized is treated as a plain proxy.
type OutboundType string

const (
	OutboundURLTest  OutboundType = "URLTest"
	OutboundFailover OutboundType = "Failover"
	OutboundDirect   OutboundType = "Direct"
	OutboundProxy    OutboundType = "Proxy"
)

// ParseOutboundType maps a loose type name (config files, Clash API) onto
// the closed OutboundType set.
func ParseOutboundType(s string) OutboundType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urltest", "url-test":
		return OutboundURLTest
	case "failover", "fallback":
		return OutboundFailover
	case "direct":
		return OutboundDirect
	default:
		return OutboundProxy
	}
}

type Outbound struct {
	Code        string       `json:"code" yaml:"code"`
	Type        OutboundType `json:"type" yaml:"type"`
	DisplayName string       `json:"display_name" yaml:"display_name"`
	Selected    bool         `json:"selected" yaml:"selected"`
}

// Section is a dashboard group. WithTagSelect=false means the section is
// itself a single probeable outbound.
type Section struct {
	Code          string     `json:"code"`
	DisplayName   string     `json:"display_name"`
	WithTagSelect bool       `json:"with_tag_select"`
	Outbounds     []Outbound `json:"outbounds"`
}

// SelectedOutbound returns the first selected member, if any.
func (s Section) SelectedOutbound() (Outbound, bool) {
	for _, o := range s.Outbounds {
		if o.Selected {
			return o, true
		}
	}
	return Outbound{}, false
}

type CheckState string

const (
	CheckLoading CheckState = "loading"
	CheckSuccess CheckState = "success"
	CheckError   CheckState = "error"
)

// Terminal reports whether a run in this state has finished.
func (s CheckState) Terminal() bool {
	return s == CheckSuccess || s == CheckError
}

type ItemState string

const (
	ItemSuccess ItemState = "success"
	ItemError   ItemState = "error"
)

// CheckItem is one section's outcome within a run. Key is the section
// display name, Value the formatted latency text.
type CheckItem struct {
	State ItemState `json:"state"`
	Key   string    `json:"key"`
	Value string    `json:"value"`
}

// CheckRunResult is the unit kept in the result store, keyed by Code.
type CheckRunResult struct {
	Order       int         `json:"order"`
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	State       CheckState  `json:"state"`
	Items       []CheckItem `json:"items"`
	RunID       string      `json:"run_id,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CheckDescriptor names a check independent of any run.
type CheckDescriptor struct {
	Order int    `json:"order"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// OutboundsCheck is the descriptor of the outbound latency diagnostic.
var OutboundsCheck = CheckDescriptor{
	Order: 4,
	Code:  "OUTBOUNDS_CHECK",
	Title: "Outbounds checks",
}
