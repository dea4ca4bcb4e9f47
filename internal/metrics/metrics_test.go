package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

func TestObserveRun_CountsTerminalOnly(t *testing.T) {
	m := New()

	m.ObserveRun(domain.CheckRunResult{Code: "X", State: domain.CheckLoading})
	m.ObserveRun(domain.CheckRunResult{
		Code:  "X",
		State: domain.CheckSuccess,
		Items: []domain.CheckItem{
			{State: domain.ItemSuccess},
			{State: domain.ItemError},
			{State: domain.ItemError},
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkRuns.WithLabelValues("X", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.checkRuns.WithLabelValues("X", "loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkSections.WithLabelValues("X", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkSections.WithLabelValues("X", "error")))
}

func TestObserveProbe(t *testing.T) {
	m := New()
	m.ObserveProbe("group", true, 20*time.Millisecond)
	m.ObserveProbe("group", false, time.Second)

	n, err := testutil.GatherAndCount(m.Registry(), "outboundcheck_probe_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveProbe("group", true, time.Millisecond)
	m.ObserveRun(domain.CheckRunResult{State: domain.CheckError})
}
