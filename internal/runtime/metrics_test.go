package runtime

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveNode("inputNode")
	m.ObserveRun(time.Second)
	m.ObserveProviderCall("openai", time.Second)
}

func TestMetrics_CountsNodeExecutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveNode("inputNode")
	m.ObserveNode("inputNode")
	m.ObserveNode("llmNode")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.nodeExecutions.WithLabelValues("inputNode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeExecutions.WithLabelValues("llmNode")))
}
