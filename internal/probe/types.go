package probe

import "context"

// GroupLatency is the result of probing a group: member code to delay in
// milliseconds, nil when the member did not answer.
type GroupLatency struct {
	Success bool            `json:"success"`
	Delays  map[string]*int `json:"delays,omitempty"`
	Message string          `json:"message,omitempty"`
}

// OK reports a clean answer. A non-empty Message overrides Success.
func (g GroupLatency) OK() bool { return g.Success && g.Message == "" }

// OutboundLatency is the result of probing a single outbound.
type OutboundLatency struct {
	Success bool   `json:"success"`
	Delay   int    `json:"delay"`
	Message string `json:"message,omitempty"`
}

func (o OutboundLatency) OK() bool { return o.Success && o.Message == "" }

// Client is the only source of network I/O for the diagnostic. A returned
// error is a transport failure and classifies the same as Success=false.
type Client interface {
	GroupLatency(ctx context.Context, code string) (GroupLatency, error)
	OutboundLatency(ctx context.Context, code string) (OutboundLatency, error)
}
