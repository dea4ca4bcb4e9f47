package probe

import (
	"context"

	"github.com/hamed0406/outboundcheck/internal/clashapi"
)

// ClashClient probes through a Clash-compatible controller.
type ClashClient struct {
	API *clashapi.Client
}

func NewClashClient(api *clashapi.Client) *ClashClient {
	return &ClashClient{API: api}
}

func (c *ClashClient) GroupLatency(ctx context.Context, code string) (GroupLatency, error) {
	out, err := c.API.GroupDelay(ctx, code)
	if err != nil {
		return GroupLatency{Success: false, Message: err.Error()}, err
	}
	return GroupLatency{
		Success: out.StatusCode/100 == 2,
		Delays:  out.Delays,
		Message: out.Message,
	}, nil
}

func (c *ClashClient) OutboundLatency(ctx context.Context, code string) (OutboundLatency, error) {
	out, err := c.API.ProxyDelay(ctx, code)
	if err != nil {
		return OutboundLatency{Success: false, Message: err.Error()}, err
	}
	res := OutboundLatency{
		Success: out.StatusCode/100 == 2 && out.Delay != nil,
		Message: out.Message,
	}
	if out.Delay != nil {
		res.Delay = *out.Delay
	}
	return res, nil
}
