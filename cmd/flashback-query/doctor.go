package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"flashback-query/internal/adapter/tool"
	"flashback-query/internal/infra/config"
	"flashback-query/internal/infra/logger"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()

	// Try to load config — some checks work without it.
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config", Fn: checkConfig(cfgPath, cfgErr)},
		{Name: "Backend URL", Fn: checkBackendURL},
		{Name: "User ID", Fn: checkUserID},
		{Name: "Backend health", Fn: checkBackendHealth},
		{Name: "Transport", Fn: checkTransport},
	}

	fmt.Println("flashback-query doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		fmt.Println("\nFix the FAIL issues above before running the server.")
		return fmt.Errorf("%d check(s) failed", fail)
	}
	if warn > 0 {
		fmt.Println("\nflashback-query should work, but consider addressing the warnings.")
	} else {
		fmt.Println("\nAll checks passed! flashback-query is ready to run.")
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfig returns a check covering config resolution. A missing file is
// fine as long as the environment fills in the required settings.
func checkConfig(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		_, statErr := os.Stat(cfgPath)
		fileMissing := os.IsNotExist(statErr)

		if cfgErr != nil {
			fix := "Check config.yaml syntax and permissions (must not be group/world writable)"
			if fileMissing {
				fix = "Create config.yaml or set FLASHBACK_BACKEND_URL and FLASHBACK_USER_ID"
			}
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     fix,
			}
		}

		if fileMissing {
			return CheckResult{
				Status:  StatusPass,
				Message: fmt.Sprintf("no file at %s — defaults plus environment in use", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("loaded from %s", cfgPath),
		}
	}
}

// checkBackendURL verifies the video backend base URL is set and parseable.
func checkBackendURL(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check — config not loaded",
		}
	}

	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("backend.base_url %q is not a valid URL", cfg.Backend.BaseURL),
			Fix:     "Set backend.base_url in config.yaml or FLASHBACK_BACKEND_URL",
		}
	}

	result := CheckResult{
		Status:  StatusPass,
		Message: cfg.Backend.BaseURL,
	}
	if u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s (plain http to a non-local host)", cfg.Backend.BaseURL)
		result.Fix = "Use https for remote backends; the user id travels in every request"
	}
	return result
}

// checkUserID verifies the collection user id is configured. Only a masked
// form is ever printed.
func checkUserID(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check — config not loaded",
		}
	}

	if strings.TrimSpace(cfg.Backend.UserID) == "" {
		return CheckResult{
			Status:  StatusFail,
			Message: "backend.user_id is not set",
			Fix:     "Set backend.user_id in config.yaml or FLASHBACK_USER_ID",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("configured (%s)", tool.MaskUserID(cfg.Backend.UserID)),
	}
}

// checkBackendHealth issues GET /health against the configured backend.
func checkBackendHealth(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check — config not loaded",
		}
	}

	backend := tool.NewVideoBackend(cfg.Backend.BaseURL, cfg.Backend.UserID, logger.Discard(),
		tool.WithTimeout(10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := backend.Health(ctx); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("backend unreachable: %v", err),
			Fix:     "Check that the video-processing API is running and backend.base_url points at it",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("reachable (%s)", time.Since(start).Round(time.Millisecond)),
	}
}

// checkTransport verifies the serving transport settings.
func checkTransport(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check — config not loaded",
		}
	}

	switch cfg.Server.Transport {
	case "stdio":
		return CheckResult{
			Status:  StatusPass,
			Message: "stdio",
		}
	case "http":
		return CheckResult{
			Status: StatusPass,
			Message: fmt.Sprintf("http on %s (rate limit %d/min, burst %d)",
				cfg.Server.HTTP.Addr, cfg.Server.HTTP.Rate.RequestsPerMin, cfg.Server.HTTP.Rate.Burst),
		}
	default:
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("unknown transport %q", cfg.Server.Transport),
			Fix:     `Set server.transport to "stdio" or "http"`,
		}
	}
}
