package probe

import (
	"context"
	"time"

	"github.com/hamed0406/outboundcheck/internal/metrics"
)

// InstrumentedClient records the duration and outcome of every query.
type InstrumentedClient struct {
	Inner   Client
	Metrics *metrics.Metrics
}

func (c *InstrumentedClient) GroupLatency(ctx context.Context, code string) (GroupLatency, error) {
	start := time.Now()
	out, err := c.Inner.GroupLatency(ctx, code)
	c.Metrics.ObserveProbe("group", err == nil && out.OK(), time.Since(start))
	return out, err
}

func (c *InstrumentedClient) OutboundLatency(ctx context.Context, code string) (OutboundLatency, error) {
	start := time.Now()
	out, err := c.Inner.OutboundLatency(ctx, code)
	c.Metrics.ObserveProbe("outbound", err == nil && out.OK(), time.Since(start))
	return out, err
}
