// internal/probe/retrychecker.go
package probe

import (
	"context"
	"time"
)

// RetryClient re-issues failed queries. Only the last attempt is returned.
// Each attempt runs under its own AttemptTimeout (0 = caller's deadline only),
// so a slow failure does not eat the time left for the next attempt.
type RetryClient struct {
	Inner          Client
	Attempts       int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

// Budget is the longest a call can take when every attempt times out.
// Zero when AttemptTimeout is unset.
func (r *RetryClient) Budget() time.Duration {
	if r.AttemptTimeout <= 0 {
		return 0
	}
	n := time.Duration(r.attempts())
	return n*r.AttemptTimeout + (n-1)*max(r.Backoff, 0)
}

func (r *RetryClient) GroupLatency(ctx context.Context, code string) (GroupLatency, error) {
	var (
		last GroupLatency
		err  error
	)
	for i := 0; i < r.attempts(); i++ {
		actx, cancel := r.attemptContext(ctx)
		last, err = r.Inner.GroupLatency(actx, code)
		cancel()
		if err == nil && last.OK() {
			return last, nil
		}
		if !r.wait(ctx, i) {
			break
		}
	}
	return last, err
}

func (r *RetryClient) OutboundLatency(ctx context.Context, code string) (OutboundLatency, error) {
	var (
		last OutboundLatency
		err  error
	)
	for i := 0; i < r.attempts(); i++ {
		actx, cancel := r.attemptContext(ctx)
		last, err = r.Inner.OutboundLatency(actx, code)
		cancel()
		if err == nil && last.OK() {
			return last, nil
		}
		if !r.wait(ctx, i) {
			break
		}
	}
	return last, err
}

func (r *RetryClient) attempts() int {
	if r.Attempts < 1 {
		return 1
	}
	return r.Attempts
}

func (r *RetryClient) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.AttemptTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.AttemptTimeout)
}

// wait sleeps between attempts; false means stop retrying.
func (r *RetryClient) wait(ctx context.Context, i int) bool {
	if i >= r.attempts()-1 {
		return false
	}
	if r.Backoff <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(r.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
