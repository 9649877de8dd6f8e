package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"flashback-query/internal/domain"
)

// setupDocument is the static guidance returned by get_setup_instructions.
// Constructed fresh per request semantics are trivially satisfied: the text
// is immutable and the tool holds no state.
const setupDocument = `# Video Query Setup Instructions

## What you need

1. **Your Flashback user ID** - identifies your personal video collection.
2. The base URL of the video-processing API.

## How to configure

Provide both values in the server configuration:

- config file: backend.base_url and backend.user_id (user_id may be stored
  as an "enc:" value and is decrypted with the passphrase in
  FLASHBACK_CONFIG_KEY)
- or environment: FLASHBACK_BACKEND_URL and FLASHBACK_USER_ID

## How it works

1. Videos are uploaded and processed through the Flashback video pipeline.
2. Each video is split into segments of roughly 30 seconds.
3. AI generates descriptions of the visual content and transcribes the audio.
4. Everything is stored in a searchable vector database.
5. You search with natural language (e.g. "person talking", "red car",
   "meeting room").

## Usage

- Use the query_videos tool to search for video content.
- Specify how many results you want (at most 15).
- Results carry clip URLs you can open to watch the segment.
- URLs expire after one hour.

## Example searches

- "person giving presentation"
- "dog running in park"
- "discussion about project deadlines"
- "someone cooking in kitchen"

No further authentication is needed - the user ID selects your collection.`

// SetupInstructions returns the static setup guidance document.
// Pure function: no backend interaction, cannot fail.
func SetupInstructions() string {
	return setupDocument
}

// SetupInstructionsTool serves the setup guidance. It never touches the
// backend.
type SetupInstructionsTool struct {
	logger *slog.Logger
}

// NewSetupInstructionsTool creates the setup instructions tool.
func NewSetupInstructionsTool(logger *slog.Logger) *SetupInstructionsTool {
	return &SetupInstructionsTool{logger: logger}
}

func (t *SetupInstructionsTool) Name() string { return "get_setup_instructions" }
func (t *SetupInstructionsTool) Description() string {
	return "Get instructions for setting up and configuring the video query system."
}

func (t *SetupInstructionsTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

func (t *SetupInstructionsTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.get_setup_instructions", t.logger, params,
		func(ctx context.Context, span trace.Span, _ struct{}) (any, error) {
			return SetupInstructions(), nil
		},
	)
}
