package otel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bravo68web/shipyard/internal/config"
)

type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func TestZapCore_ExportsRecords(t *testing.T) {
	exp := &memoryExporter{}
	provider, err := NewProvider(context.Background(), &config.OTELConfig{ServiceName: "test"}, "test", "dev", exp)
	require.NoError(t, err)
	defer provider.Close()

	zl := zap.New(NewZapCore(provider, zapcore.InfoLevel)).With(zap.String("component", "deployer"))
	zl.Debug("dropped")
	zl.Info("deployment finished",
		zap.Int("count", 3),
		zap.Float64("ratio", 0.7),
		zap.Bool("success", true),
		zap.Duration("took", 2*time.Second),
		zap.Error(errors.New("boom")),
	)
	require.NoError(t, zl.Sync())

	exp.mu.Lock()
	defer exp.mu.Unlock()
	require.Len(t, exp.records, 1)

	rec := exp.records[0]
	assert.Equal(t, "deployment finished", rec.Body().AsString())
	assert.Equal(t, "info", rec.SeverityText())

	attrs := map[string]string{}
	var ratio float64
	rec.WalkAttributes(func(kv log.KeyValue) bool {
		if kv.Key == "ratio" {
			ratio = kv.Value.AsFloat64()
		}
		attrs[kv.Key] = kv.Value.String()
		return true
	})
	assert.Equal(t, "deployer", attrs["component"])
	assert.Equal(t, "3", attrs["count"])
	assert.InDelta(t, 0.7, ratio, 1e-9)
	assert.Equal(t, "true", attrs["success"])
	assert.Equal(t, "2s", attrs["took"])
	assert.Equal(t, "boom", attrs["error"])
}

func TestNewLogger_LocalOnly(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Output = "console"
	cfg.Logging.Format = "json"

	l, err := NewLogger(context.Background(), cfg, "dev")
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.NoError(t, l.Close())
}
