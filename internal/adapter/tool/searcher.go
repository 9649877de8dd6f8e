package tool

import (
	"context"

	"flashback-query/internal/domain"
)

// VideoSearcher abstracts the video-indexing backend.
type VideoSearcher interface {
	// Search returns ranked clips for a natural-language query. topK is
	// clamped to the backend's documented range before transmission.
	Search(ctx context.Context, query string, topK int) ([]domain.Clip, error)
	// Name returns the backend identifier (e.g. "flashback").
	Name() string
}
