// Package clashapi talks to a Clash-compatible external controller
// (Clash, mihomo, sing-box clash_api).
package clashapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrStatus is returned when the controller answers with a non-2xx status
// and no message body.
var ErrStatus = errors.New("clashapi: unexpected status")

const (
	DefaultProbeURL     = "https://www.gstatic.com/generate_204"
	DefaultProbeTimeout = 5 * time.Second
)

type Client struct {
	BaseURL      string
	Secret       string
	ProbeURL     string
	ProbeTimeout time.Duration
	HTTP         *http.Client
}

func New(baseURL, secret string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Secret:       secret,
		ProbeURL:     DefaultProbeURL,
		ProbeTimeout: DefaultProbeTimeout,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
	}
}

// ProxyDelay is the answer of GET /proxies/{name}/delay.
// Delay is nil when the controller reported a message instead.
type ProxyDelay struct {
	StatusCode int
	Delay      *int
	Message    string
}

// GroupDelay is the answer of GET /group/{name}/delay. Members the
// controller reported as null keep a nil entry.
type GroupDelay struct {
	StatusCode int
	Delays     map[string]*int
	Message    string
}

// Proxy is one entry of GET /proxies.
type Proxy struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Now  string   `json:"now,omitempty"`
	All  []string `json:"all,omitempty"`
}

func (c *Client) ProxyDelay(ctx context.Context, name string) (ProxyDelay, error) {
	status, body, err := c.get(ctx, "/proxies/"+url.PathEscape(name)+"/delay", c.delayQuery())
	if err != nil {
		return ProxyDelay{}, err
	}
	var raw struct {
		Delay   *int   `json:"delay"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		if !is2xx(status) {
			return ProxyDelay{}, fmt.Errorf("%w: %d", ErrStatus, status)
		}
		return ProxyDelay{}, fmt.Errorf("decode proxy delay: %w", err)
	}
	if !is2xx(status) && raw.Message == "" {
		return ProxyDelay{}, fmt.Errorf("%w: %d", ErrStatus, status)
	}
	return ProxyDelay{StatusCode: status, Delay: raw.Delay, Message: raw.Message}, nil
}

func (c *Client) GroupDelay(ctx context.Context, name string) (GroupDelay, error) {
	status, body, err := c.get(ctx, "/group/"+url.PathEscape(name)+"/delay", c.delayQuery())
	if err != nil {
		return GroupDelay{}, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		if !is2xx(status) {
			return GroupDelay{}, fmt.Errorf("%w: %d", ErrStatus, status)
		}
		return GroupDelay{}, fmt.Errorf("decode group delay: %w", err)
	}

	out := GroupDelay{StatusCode: status, Delays: make(map[string]*int, len(raw))}
	for k, v := range raw {
		var msg string
		if k == "message" && json.Unmarshal(v, &msg) == nil {
			out.Message = msg
			continue
		}
		var d *int
		if err := json.Unmarshal(v, &d); err != nil {
			return GroupDelay{}, fmt.Errorf("decode delay of %q: %w", k, err)
		}
		out.Delays[k] = d
	}
	if !is2xx(status) && out.Message == "" {
		return GroupDelay{}, fmt.Errorf("%w: %d", ErrStatus, status)
	}
	return out, nil
}

// Proxies lists every proxy and group known to the controller.
func (c *Client) Proxies(ctx context.Context) (map[string]Proxy, error) {
	status, body, err := c.get(ctx, "/proxies", nil)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, fmt.Errorf("%w: %d", ErrStatus, status)
	}
	var raw struct {
		Proxies map[string]Proxy `json:"proxies"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode proxies: %w", err)
	}
	for name, p := range raw.Proxies {
		if p.Name == "" {
			p.Name = name
			raw.Proxies[name] = p
		}
	}
	return raw.Proxies, nil
}

func (c *Client) delayQuery() url.Values {
	q := url.Values{}
	probeURL := c.ProbeURL
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	timeout := c.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	q.Set("url", probeURL)
	q.Set("timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	if c.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.Secret)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func is2xx(code int) bool { return code/100 == 2 }
