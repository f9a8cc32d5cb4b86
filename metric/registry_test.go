package metric

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
)

func TestNewRegistryHasCoreMetrics(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg.Core)
	require.NotNil(t, reg.Core.FetchesTotal)

	// Core metrics are live immediately.
	reg.Core.FetchesTotal.WithLabelValues("inventory", "fresh").Inc()

	families, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "uptop_fetch_requests_total" {
			found = true
		}
	}
	assert.True(t, found, "expected core fetch counter in gather output")
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()

	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "custom_total",
		Help:      "test counter",
	})

	require.NoError(t, reg.Register("pipeline", "custom_total", c))

	err := reg.Register("pipeline", "custom_total", c)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry()

	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "gone_total", Help: "test"})
	require.NoError(t, reg.Register("pipeline", "gone_total", c))

	assert.True(t, reg.Unregister("pipeline", "gone_total"))
	assert.False(t, reg.Unregister("pipeline", "gone_total"))

	// Re-registration after unregister succeeds.
	require.NoError(t, reg.Register("pipeline", "gone_total", c))
}

func TestHandlerServesExposition(t *testing.T) {
	reg := NewRegistry()
	reg.Core.RetriesTotal.WithLabelValues("inventory").Inc()

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, 200, resp.StatusCode)
}
