package tool

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"flashback-query/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerOpenTimeout        = 30 * time.Second
)

// BreakerSearcher wraps a VideoSearcher with a circuit breaker. When the
// backend fails repeatedly, the circuit opens and subsequent calls fail fast
// without dialing, so a struggling backend is not hammered further.
type BreakerSearcher struct {
	inner   VideoSearcher
	breaker *gobreaker.CircuitBreaker[[]domain.Clip]
	logger  *slog.Logger
}

// NewBreakerSearcher wraps inner. The circuit opens after maxFailures
// consecutive failures and allows a single probe through after openTimeout.
// Zero values fall back to defaults.
func NewBreakerSearcher(inner VideoSearcher, maxFailures uint32, openTimeout time.Duration, logger *slog.Logger) *BreakerSearcher {
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	if openTimeout <= 0 {
		openTimeout = defaultBreakerOpenTimeout
	}

	cb := gobreaker.NewCircuitBreaker[[]domain.Clip](gobreaker.Settings{
		Name:        "backend:" + inner.Name(),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// Only connectivity-class failures count toward opening the
		// circuit. An HTTP error status or a bad payload is the backend
		// answering, not the backend being down.
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsRetryableError(err)
		},
	})

	return &BreakerSearcher{inner: inner, breaker: cb, logger: logger}
}

// Search implements VideoSearcher. While the circuit is open, calls return
// ErrBackendUnavailable without reaching the backend.
func (s *BreakerSearcher) Search(ctx context.Context, query string, topK int) ([]domain.Clip, error) {
	clips, err := s.breaker.Execute(func() ([]domain.Clip, error) {
		return s.inner.Search(ctx, query, topK)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.NewDomainError("video search", domain.ErrBackendUnavailable, "circuit open")
		}
		return nil, err
	}
	return clips, nil
}

// Name implements VideoSearcher.
func (s *BreakerSearcher) Name() string { return s.inner.Name() }

// State returns the breaker state for diagnostics.
func (s *BreakerSearcher) State() gobreaker.State { return s.breaker.State() }

var _ VideoSearcher = (*BreakerSearcher)(nil)
