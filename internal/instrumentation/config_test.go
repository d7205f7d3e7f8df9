package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	for _, k := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_INCLUDE_PII"} {
		t.Setenv(k, "")
	}

	cfg := DefaultConfig()
	assert.Equal(t, "invitebooker", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ExporterPrometheus, cfg.MetricsExporter)
	assert.Equal(t, ExporterNone, cfg.TracingExporter)
	assert.Equal(t, 0.1, cfg.TraceSamplingRate)
	assert.True(t, cfg.Audit.Enabled)
	assert.False(t, cfg.Audit.IncludePII)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "booker-test")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("METRICS_DETAILED_LABELS", "true")
	t.Setenv("AUDIT_LOGGING_INCLUDE_PII", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "booker-test", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, ExporterStdout, cfg.MetricsExporter)
	assert.Equal(t, ExporterStdout, cfg.TracingExporter)
	assert.Equal(t, 0.5, cfg.TraceSamplingRate)
	assert.True(t, cfg.DetailedLabels)
	assert.True(t, cfg.Audit.IncludePII)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1}, ""},
		{"empty exporters", Config{}, ""},
		{"rate too high", Config{TraceSamplingRate: 1.5}, "sampling rate"},
		{"rate negative", Config{TraceSamplingRate: -0.1}, "sampling rate"},
		{"bad metrics exporter", Config{MetricsExporter: "statsd"}, "invalid metrics exporter"},
		{"bad tracing exporter", Config{TracingExporter: "jaeger"}, "invalid tracing exporter"},
		{"otlp tracing needs endpoint", Config{TracingExporter: ExporterOTLP}, "OTLP endpoint"},
		{"otlp metrics needs endpoint", Config{MetricsExporter: ExporterOTLP}, "OTLP endpoint"},
		{"otlp with endpoint", Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("IB_TEST_STR", "value")
	t.Setenv("IB_TEST_BOOL", "true")
	t.Setenv("IB_TEST_BAD_BOOL", "maybe")
	t.Setenv("IB_TEST_FLOAT", "0.75")
	t.Setenv("IB_TEST_BAD_FLOAT", "lots")

	assert.Equal(t, "value", getEnvOrDefault("IB_TEST_STR", "d"))
	assert.Equal(t, "d", getEnvOrDefault("IB_TEST_MISSING", "d"))
	assert.True(t, getEnvBoolOrDefault("IB_TEST_BOOL", false))
	assert.True(t, getEnvBoolOrDefault("IB_TEST_BAD_BOOL", true))
	assert.False(t, getEnvBoolOrDefault("IB_TEST_MISSING", false))
	assert.Equal(t, 0.75, getEnvFloatOrDefault("IB_TEST_FLOAT", 0.5))
	assert.Equal(t, 0.5, getEnvFloatOrDefault("IB_TEST_BAD_FLOAT", 0.5))
}
