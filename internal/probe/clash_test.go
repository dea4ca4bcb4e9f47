package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamed0406/outboundcheck/internal/clashapi"
	"github.com/hamed0406/outboundcheck/internal/metrics"
)

func newClash(t *testing.T, h http.HandlerFunc) *ClashClient {
	t.Helper()
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)
	return NewClashClient(clashapi.New(s.URL, ""))
}

func TestClashClient_OutboundOK(t *testing.T) {
	c := newClash(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"delay":87}`))
	})

	out, err := c.OutboundLatency(context.Background(), "de-1")
	if err != nil {
		t.Fatalf("OutboundLatency: %v", err)
	}
	if !out.OK() || out.Delay != 87 {
		t.Fatalf("want ok 87ms, got %+v", out)
	}
}

func TestClashClient_OutboundMessageIsFailure(t *testing.T) {
	c := newClash(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"An error occurred in the delay test"}`))
	})

	out, err := c.OutboundLatency(context.Background(), "de-1")
	if err != nil {
		t.Fatalf("OutboundLatency: %v", err)
	}
	if out.OK() || out.Message == "" {
		t.Fatalf("want failure with message, got %+v", out)
	}
}

func TestClashClient_GroupOK(t *testing.T) {
	c := newClash(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":10,"b":null}`))
	})

	out, err := c.GroupLatency(context.Background(), "main")
	if err != nil {
		t.Fatalf("GroupLatency: %v", err)
	}
	if !out.OK() || len(out.Delays) != 2 {
		t.Fatalf("want ok with 2 members, got %+v", out)
	}
}

func TestClashClient_TransportTimeout(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"delay":1}`))
	}))
	defer s.Close()

	api := clashapi.New(s.URL, "")
	api.HTTP.Timeout = 50 * time.Millisecond
	c := NewClashClient(api)

	out, err := c.GroupLatency(context.Background(), "main")
	if err == nil {
		t.Fatalf("want transport error")
	}
	if out.OK() || out.Message == "" {
		t.Fatalf("want failed result carrying the error, got %+v", out)
	}
}

func TestInstrumentedClient_PassesThrough(t *testing.T) {
	f := &fakeClient{singles: []OutboundLatency{{Success: true, Delay: 3}}}
	c := &InstrumentedClient{Inner: f, Metrics: metrics.New()}

	out, err := c.OutboundLatency(context.Background(), "x")
	if err != nil || out.Delay != 3 {
		t.Fatalf("unexpected %+v err=%v", out, err)
	}
}
