package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBackend(cfg, ve)
	validateServer(cfg, ve)
	validateLogging(cfg, ve)
	validateTracing(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBackend(cfg *Config, ve *ValidationError) {
	if cfg.Backend.BaseURL == "" {
		ve.Add("backend.base_url is required (or set FLASHBACK_BACKEND_URL)")
	} else {
		u, err := url.Parse(cfg.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			ve.Add("backend.base_url %q is not a valid URL", cfg.Backend.BaseURL)
		} else if u.Scheme != "http" && u.Scheme != "https" {
			ve.Add("backend.base_url scheme must be http or https, got %q", u.Scheme)
		}
	}
	if strings.TrimSpace(cfg.Backend.UserID) == "" {
		ve.Add("backend.user_id is required (or set FLASHBACK_USER_ID)")
	}
	if cfg.Backend.Timeout <= 0 {
		ve.Add("backend.timeout must be > 0")
	}
	if cfg.Backend.Breaker.Enabled {
		if cfg.Backend.Breaker.MaxFailures <= 0 {
			ve.Add("backend.breaker.max_failures must be > 0 when the breaker is enabled")
		}
		if cfg.Backend.Breaker.OpenTimeout <= 0 {
			ve.Add("backend.breaker.open_timeout must be > 0 when the breaker is enabled")
		}
	}
}

func validateServer(cfg *Config, ve *ValidationError) {
	if cfg.Server.Name == "" {
		ve.Add("server.name must not be empty")
	}
	switch cfg.Server.Transport {
	case "stdio":
		// stdout carries the protocol; logs must go elsewhere.
		if strings.ToLower(cfg.Logging.Output) == "stdout" {
			ve.Add("logging.output cannot be stdout with the stdio transport")
		}
	case "http":
		if cfg.Server.HTTP.Addr == "" {
			ve.Add("server.http.addr is required for the http transport")
		}
		if cfg.Server.HTTP.Rate.RequestsPerMin <= 0 {
			ve.Add("server.http.rate.requests_per_min must be > 0")
		}
		if cfg.Server.HTTP.Rate.Burst <= 0 {
			ve.Add("server.http.rate.burst must be > 0")
		}
	default:
		ve.Add("server.transport must be \"stdio\" or \"http\", got %q", cfg.Server.Transport)
	}
}

func validateLogging(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		ve.Add("logging.format %q is not one of json, text", cfg.Logging.Format)
	}
}

func validateTracing(cfg *Config, ve *ValidationError) {
	if !cfg.Tracing.Enabled {
		return
	}
	// The stdout exporter writes to stderr, so it is safe on either transport.
	switch cfg.Tracing.Exporter {
	case "stdout", "noop":
	default:
		ve.Add("tracing.exporter %q is not one of stdout, noop", cfg.Tracing.Exporter)
	}
}
