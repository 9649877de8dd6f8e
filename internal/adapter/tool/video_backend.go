package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"flashback-query/internal/domain"
	"flashback-query/internal/infra/tracer"
)

const (
	// retrieveEndpoint returns ranked clips with AI-generated descriptions.
	retrieveEndpoint = "/retrieve-clips-with-descriptions"
	healthEndpoint   = "/health"

	defaultBackendTimeout = 15 * time.Second
	maxResponseBody       = 512 * 1024 // 512KB
	maxErrorDetail        = 200
)

// retrieveRequest is the wire form of a clip search.
type retrieveRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
}

// clipRecord models one clip in the backend response. Score is a pointer so
// an absent score can be told apart from a genuine 0.0.
type clipRecord struct {
	ChunkID     string   `json:"chunk_id"`
	VideoID     string   `json:"video_id"`
	Description string   `json:"description"`
	Score       *float64 `json:"score"`
	URL         string   `json:"url"`
	ExpiresAt   string   `json:"expires_at"`
}

type retrieveResponse struct {
	Clips []clipRecord `json:"clips"`
}

// VideoBackend queries the video-processing API over HTTP. The user ID names
// the caller's video collection; it travels in the request body and appears
// in logs only masked.
type VideoBackend struct {
	client  *http.Client
	baseURL string
	userID  string
	logger  *slog.Logger
}

// Option customizes a VideoBackend.
type Option func(*VideoBackend)

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(b *VideoBackend) {
		if d > 0 {
			b.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *VideoBackend) {
		b.client = c
	}
}

// NewVideoBackend creates a client for the video-processing API at baseURL.
// userID must be non-empty; config validation enforces that before this
// constructor runs.
func NewVideoBackend(baseURL, userID string, logger *slog.Logger, opts ...Option) *VideoBackend {
	b := &VideoBackend{
		client: &http.Client{
			Transport: newPooledTransport(),
			Timeout:   defaultBackendTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// newPooledTransport returns a transport sized for a single backend host.
func newPooledTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

func (b *VideoBackend) Name() string { return "flashback" }

// Search implements VideoSearcher. topK is clamped into the documented range
// before transmission; the response order is preserved exactly.
func (b *VideoBackend) Search(ctx context.Context, query string, topK int) ([]domain.Clip, error) {
	if b.userID == "" {
		return nil, domain.NewDomainError("video search", domain.ErrInvalidInput, "user id not configured")
	}
	topK = domain.ClampTopK(topK)

	ctx, span := tracer.StartSpan(ctx, "backend.search",
		trace.WithAttributes(tracer.IntAttr("backend.top_k", topK)),
	)
	defer span.End()

	body, err := b.retrieve(ctx, retrieveRequest{
		UserID: b.userID,
		Query:  query,
		TopK:   topK,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	var rr retrieveResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		derr := domain.NewDomainError("video search", domain.ErrMalformedResponse, "parse response: "+err.Error())
		tracer.RecordError(span, derr)
		return nil, derr
	}

	clips := make([]domain.Clip, 0, len(rr.Clips))
	for i, rec := range rr.Clips {
		if rec.Score == nil || rec.URL == "" {
			detail := fmt.Sprintf("clip %d missing score or url", i)
			derr := domain.NewDomainError("video search", domain.ErrMalformedResponse, detail)
			tracer.RecordError(span, derr)
			return nil, derr
		}
		desc := rec.Description
		if desc == "" {
			desc = domain.DefaultDescription
		}
		clips = append(clips, domain.Clip{
			ChunkID:     rec.ChunkID,
			VideoID:     rec.VideoID,
			Description: desc,
			Score:       *rec.Score,
			URL:         rec.URL,
			ExpiresAt:   rec.ExpiresAt,
		})
	}

	span.SetAttributes(tracer.IntAttr("backend.clips", len(clips)))
	tracer.SetOK(span)
	b.logger.Debug("video search completed",
		"query", query,
		"top_k", topK,
		"clips", len(clips),
		"user", MaskUserID(b.userID),
	)
	return clips, nil
}

// retrieve posts the search request and returns the raw response body.
// Transport failures and non-200 statuses come back as DomainErrors ready
// for the tool boundary.
func (b *VideoBackend) retrieve(ctx context.Context, rr retrieveRequest) ([]byte, error) {
	payload, err := json.Marshal(rr)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+retrieveEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, domain.NewDomainError("video search", domain.ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, domain.NewDomainError("video search", domain.ErrBackendUnavailable, "read response: "+err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), maxErrorDetail))
		return nil, domain.NewDomainError("video search", domain.ErrBackendStatus, detail)
	}
	return body, nil
}

// Health probes the backend health endpoint. Used by the doctor command,
// never by the tool path.
func (b *VideoBackend) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+healthEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return domain.NewDomainError("health check", domain.ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode != http.StatusOK {
		return domain.NewDomainError("health check", domain.ErrBackendStatus, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	return nil
}

// MaskUserID keeps at most the first four characters of the collection
// credential for log correlation. The full value never appears in logs.
func MaskUserID(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return id[:4] + "..."
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var _ VideoSearcher = (*VideoBackend)(nil)
