package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerIsSingleton(t *testing.T) {
	m := Ledger()
	require.NotNil(t, m)
	assert.Same(t, m, Ledger())
}

func TestLedgerCounters(t *testing.T) {
	m := Ledger()

	before := testutil.ToFloat64(m.operations.WithLabelValues("verify_action", "ok"))
	m.ObserveOperation("verify_action", "ok", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(m.operations.WithLabelValues("verify_action", "ok")))

	m.ObserveOperation("claim_rewards", "", time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("claim_rewards", "unknown")))

	m.SetSupply(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(m.supply))

	m.IncBadgeAwarded(3)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.badges.WithLabelValues("3")))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", "ok", time.Second)
		m.SetHeight(1)
		m.SetSupply(1)
		m.IncVerified()
		m.IncBadgeAwarded(1)
		m.AddUndistributed(1)
		m.ObserveJobRun("x", "ok")
	})
}
