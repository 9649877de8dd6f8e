package tool

import (
	"context"
	"log/slog"

	"flashback-query/internal/domain"
	"flashback-query/internal/infra/logger"
)

func newTestLogger() *slog.Logger { return logger.Discard() }

// Compile-time checks that the tools satisfy the domain interface.
var (
	_ domain.Tool   = (*QueryVideosTool)(nil)
	_ domain.Tool   = (*SetupInstructionsTool)(nil)
	_ VideoSearcher = (*mockSearcher)(nil)
)

// mockSearcher records calls and returns canned results.
type mockSearcher struct {
	clips     []domain.Clip
	err       error
	callCount int
	gotQuery  string
	gotTopK   int
}

func (m *mockSearcher) Search(_ context.Context, query string, topK int) ([]domain.Clip, error) {
	m.callCount++
	m.gotQuery = query
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.clips, nil
}

func (m *mockSearcher) Name() string { return "mock" }

// sampleClips returns a small ranked result set for formatting tests.
func sampleClips() []domain.Clip {
	return []domain.Clip{
		{
			ChunkID:     "chunk-aaaa1111",
			VideoID:     "video-bbbb2222",
			Description: "A person giving a presentation in a conference room",
			Score:       0.95,
			URL:         "https://cdn.example.com/clips/1?sig=abc",
			ExpiresAt:   "2025-06-01T12:00:00Z",
		},
		{
			ChunkID:     "chunk-cccc3333",
			VideoID:     "video-dddd4444",
			Description: "A dog running across a park lawn",
			Score:       0.82,
			URL:         "https://cdn.example.com/clips/2?sig=def",
			ExpiresAt:   "2025-06-01T12:00:00Z",
		},
		{
			ChunkID:     "chunk-eeee5555",
			VideoID:     "video-ffff6666",
			Description: "Someone cooking pasta in a kitchen",
			Score:       0.41,
			URL:         "https://cdn.example.com/clips/3?sig=ghi",
			ExpiresAt:   "2025-06-01T12:00:00Z",
		},
	}
}
