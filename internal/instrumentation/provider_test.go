package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "metrics should be a no-op recorder when disabled")
	assert.Nil(t, provider.PrometheusHandler())
	assert.NotNil(t, provider.Tracer("test"))
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.PrometheusHandler())
	assert.NotNil(t, provider.Tracer("test"))
}

func TestNewProvider_TwoPrometheusProvidersCoexist(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	first, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = first.Shutdown(ctx) }()

	second, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = second.Shutdown(ctx) }()
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterStdout,
		TracingExporter: ExporterStdout,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	assert.Nil(t, provider.PrometheusHandler(), "stdout exporter has no scrape endpoint")
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "invalid metrics exporter",
			config: Config{Enabled: true, MetricsExporter: "invalid", TracingExporter: ExporterNone},
		},
		{
			name:   "invalid tracing exporter",
			config: Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "invalid"},
		},
		{
			name:   "otlp tracing without endpoint",
			config: Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP},
		},
		{
			name:   "otlp metrics without endpoint",
			config: Config{Enabled: true, MetricsExporter: ExporterOTLP, TracingExporter: ExporterNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.ServiceName = "test-service"
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := NewProvider(ctx, tt.config)
			assert.Error(t, err)
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewProvider_DefaultExporters(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		ServiceInstanceID: "instance-1",
		Enabled:           true,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.NotNil(t, provider.PrometheusHandler(), "empty metrics exporter falls back to prometheus")
	assert.NotNil(t, provider.Tracer("test"))
}

func TestNewProvider_InvalidSamplingRate(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		ServiceName:       "test-service",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterStdout,
		TraceSamplingRate: 1.5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling rate")
}
