package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/chris-regnier/quill/internal/config"
)

// shutdownCtx returns a context with a short timeout for test shutdown calls,
// avoiding 10s gRPC connection timeouts when no collector is running.
func shutdownCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 1*time.Second)
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     bool
		env     string
		enabled bool
	}{
		{"config off", false, "", false},
		{"config on", true, "", true},
		{"env disables", true, "false", false},
		{"env enables", false, "true", true},
		{"env upper", false, "TRUE", true},
		{"env mixed", false, "True", true},
		{"env one", false, "1", true},
		{"env zero", true, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEnabled, tt.env)
			if got := Enabled(config.TelemetryConfig{Enabled: tt.cfg}); got != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestInit_DisabledReturnsNoop(t *testing.T) {
	t.Setenv(EnvEnabled, "")

	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown should not error, got: %v", err)
	}
}

func TestInit_EnvVarOverrideDisables(t *testing.T) {
	cfg := config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Protocol:    "grpc",
		ServiceName: "quill-test",
		SampleRate:  1.0,
	}
	t.Setenv(EnvEnabled, "false")

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown should not error, got: %v", err)
	}
}

func TestInit_GRPC(t *testing.T) {
	// Exporters connect lazily, so Init succeeds without a collector.
	cfg := config.TelemetryConfig{
		Enabled:     false,
		Endpoint:    "localhost:4317",
		Protocol:    "grpc",
		Insecure:    true,
		ServiceName: "quill-test",
		SampleRate:  1.0,
		Headers:     map[string]string{"Authorization": "Bearer test-token"},
	}
	t.Setenv(EnvEnabled, "true")

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if otel.GetTracerProvider() == nil {
		t.Fatal("expected non-nil tracer provider")
	}

	ctx, cancel := shutdownCtx()
	defer cancel()
	_ = shutdown(ctx)
}

func TestInit_HTTPProtocol(t *testing.T) {
	t.Setenv(EnvEnabled, "")
	cfg := config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "localhost:4318",
		Protocol:    "http",
		Insecure:    true,
		ServiceName: "quill-test-http",
		SampleRate:  0.5,
	}

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	ctx, cancel := shutdownCtx()
	defer cancel()
	_ = shutdown(ctx)
}
