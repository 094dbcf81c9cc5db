package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewRegistryMetrics(reg)
	require.NoError(t, err)

	m.RecordAccident("create", nil)
	m.RecordAccident("create", nil)
	m.RecordAccident("create", errors.New("boom"))
	m.RecordCacheLookup("neighborhoods", true)
	m.RecordExport(12, nil)
	m.ObserveRollup(3 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.AccidentOps.WithLabelValues("create", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AccidentOps.WithLabelValues("create", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("neighborhoods", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Exports.WithLabelValues("success")), 0)
}

func TestRegistryMetrics_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRegistryMetrics(reg)
	require.NoError(t, err)

	_, err = NewRegistryMetrics(reg)
	assert.Error(t, err)
}

func TestRegistryMetrics_NilIsNoop(t *testing.T) {
	var m *RegistryMetrics
	assert.NotPanics(t, func() {
		m.RecordAccident("delete", nil)
		m.RecordVehicle("add", nil)
		m.ObserveRollup(time.Second)
		m.RecordExport(1, nil)
		m.RecordSketchUpload(nil)
		m.RecordCacheLookup("agents", false)
	})
}
