package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"flashback-query/internal/domain"
	"flashback-query/internal/infra/tracer"
)

// QueryVideosTool searches the user's video collection through a VideoSearcher.
type QueryVideosTool struct {
	searcher VideoSearcher
	logger   *slog.Logger
}

// NewQueryVideosTool creates the video search tool backed by the given searcher.
func NewQueryVideosTool(searcher VideoSearcher, logger *slog.Logger) *QueryVideosTool {
	return &QueryVideosTool{searcher: searcher, logger: logger}
}

func (t *QueryVideosTool) Name() string { return "query_videos" }
func (t *QueryVideosTool) Description() string {
	return "Search for video clips based on a natural language query. Returns AI-generated descriptions and time-limited URLs of relevant video segments."
}

func (t *QueryVideosTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Natural language description of the video content to find"},
				"max_results": {"type": "integer", "description": "Maximum number of clips to return, 1-15 (default: 10); out-of-range values are clamped"}
			},
			"required": ["query"]
		}`),
	}
}

type queryVideosParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

func (t *QueryVideosTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.query_videos", t.logger, params,
		func(ctx context.Context, span trace.Span, p queryVideosParams) (any, error) {
			query := strings.TrimSpace(p.Query)
			if err := RequireField("query", query); err != nil {
				return nil, err
			}

			topK := p.MaxResults
			if topK <= 0 {
				topK = domain.DefaultTopK
			}
			topK = domain.ClampTopK(topK)

			invocation := newInvocationID()
			span.SetAttributes(
				tracer.StringAttr("tool.invocation_id", invocation),
				tracer.IntAttr("tool.top_k", topK),
			)

			clips, err := t.searcher.Search(ctx, query, topK)
			if err != nil {
				return nil, err
			}

			t.logger.Debug("video query completed",
				"invocation_id", invocation,
				"clips", len(clips),
			)
			return FormatClips(query, clips), nil
		},
	)
}

// newInvocationID returns a ULID correlating one query across logs and spans.
func newInvocationID() string {
	now := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
