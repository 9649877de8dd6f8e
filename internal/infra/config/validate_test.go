package config

import (
	"strings"
	"testing"
)

// validConfig returns defaults completed with the two required backend
// fields, which have no default values.
func validConfig() *Config {
	cfg := Defaults()
	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.UserID = "user-abc-123"
	return cfg
}

func TestValidateValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
}

func TestValidateMissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "backend.base_url is required")
}

func TestValidateMalformedBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = "not a url"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "not a valid URL")
}

func TestValidateBaseURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = "ftp://video-api:8000"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "scheme must be http or https")
}

func TestValidateMissingUserID(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.UserID = "   "
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "backend.user_id is required")
}

func TestValidateTimeoutZero(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Timeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "backend.timeout must be > 0")
}

func TestValidateBreakerFields(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Breaker.MaxFailures = 0
	cfg.Backend.Breaker.OpenTimeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "backend.breaker.max_failures must be > 0")
	assertContains(t, err.Error(), "backend.breaker.open_timeout must be > 0")
}

func TestValidateBreakerDisabledSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Breaker.Enabled = false
	cfg.Backend.Breaker.MaxFailures = 0
	cfg.Backend.Breaker.OpenTimeout = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled breaker should skip field checks: %v", err)
	}
}

func TestValidateServerNameEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Name = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "server.name must not be empty")
}

func TestValidateUnknownTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "grpc"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `server.transport must be "stdio" or "http"`)
}

func TestValidateStdioRejectsStdoutLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Output = "stdout"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "logging.output cannot be stdout")
}

func TestValidateHTTPAddrRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "http"
	cfg.Server.HTTP.Addr = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "server.http.addr is required")
}

func TestValidateHTTPRateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "http"
	cfg.Server.HTTP.Rate.RequestsPerMin = 0
	cfg.Server.HTTP.Rate.Burst = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "server.http.rate.requests_per_min must be > 0")
	assertContains(t, err.Error(), "server.http.rate.burst must be > 0")
}

func TestValidateHTTPAllowsStdoutLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "http"
	cfg.Logging.Output = "stdout"
	if err := Validate(cfg); err != nil {
		t.Fatalf("stdout logging is fine over http: %v", err)
	}
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `logging.level "verbose"`)
}

func TestValidateLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `logging.format "xml"`)
}

func TestValidateTracingExporter(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "jaeger"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `tracing.exporter "jaeger"`)
}

func TestValidateTracingStdoutWithStdioTransport(t *testing.T) {
	// The stdout exporter lands on stderr, so it must pass with the stdio
	// transport too.
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "stdout"
	if err := Validate(cfg); err != nil {
		t.Fatalf("stdout exporter over stdio transport: %v", err)
	}
}

func TestValidateTracingStdoutWithHTTPTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "http"
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "stdout"
	if err := Validate(cfg); err != nil {
		t.Fatalf("stdout exporter is fine over http: %v", err)
	}
}

func TestValidateTracingDisabledSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = false
	cfg.Tracing.Exporter = "bogus"
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled tracing should skip exporter check: %v", err)
	}
}

func TestValidationErrorFormat(t *testing.T) {
	ve := &ValidationError{}
	ve.Add("first error")
	ve.Add("second error")

	msg := ve.Error()
	if !strings.HasPrefix(msg, "config validation failed:") {
		t.Errorf("unexpected prefix: %s", msg)
	}
	if !strings.Contains(msg, "first error") || !strings.Contains(msg, "second error") {
		t.Errorf("missing error details: %s", msg)
	}
}

func TestValidateAccumulatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.Timeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// base_url, user_id, and timeout are all wrong at once.
	if len(ve.Errors) < 3 {
		t.Errorf("expected at least 3 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
