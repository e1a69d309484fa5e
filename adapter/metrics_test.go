package adapter

import (
	"context"
	"testing"

	"github.com/bootjp/txkv/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOpCounter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDispatcher(store.NewTxnStore(), "metrics-test")

	_, _ = d.Dispatch(ctx, "SET", []string{"a", "1"})
	_, _ = d.Dispatch(ctx, "set", []string{"b", "1"})
	_, _ = d.Dispatch(ctx, "GET", []string{"a"})
	// rejected calls are not counted
	_, _ = d.Dispatch(ctx, "SET", []string{"a"})
	_, _ = d.Dispatch(ctx, "FROB", nil)

	assert.InDelta(t, 2, testutil.ToFloat64(opCounter.WithLabelValues("SET", "metrics-test")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(opCounter.WithLabelValues("GET", "metrics-test")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(opCounter.WithLabelValues("FROB", "metrics-test")), 0)
}

func TestOpCounter_Description(t *testing.T) {
	t.Parallel()
	desc := (<-collectDescs(opCounter)).String()
	assert.Contains(t, desc, `fqName: "txkv_commands_total"`)
	assert.Contains(t, desc, "by command name and front end")
	assert.Contains(t, desc, "variableLabels: {command,frontend}")
}

func collectDescs(c prometheus.Collector) <-chan *prometheus.Desc {
	ch := make(chan *prometheus.Desc, 1)
	c.Describe(ch)
	close(ch)
	return ch
}
