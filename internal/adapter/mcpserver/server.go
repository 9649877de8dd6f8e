package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"flashback-query/internal/domain"
)

const apiInfoURI = "api://video-processing"

// Deps carries everything needed to assemble the protocol server.
type Deps struct {
	Name    string
	Version string
	BaseURL string // backend base URL shown in the API info resource
	Tools   []domain.Tool
	Logger  *slog.Logger
}

// New assembles the MCP server: every tool bridged onto the protocol, the
// API info resource, and the video search prompt.
func New(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(deps.Name, deps.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range deps.Tools {
		registerTool(s, t, deps.Logger)
	}
	registerAPIInfoResource(s, deps.BaseURL)
	registerSearchPrompt(s)

	return s
}

// registerTool bridges a domain.Tool onto the protocol. The tool's own JSON
// Schema is handed over raw so the client sees exactly what the tool
// validates against.
func registerTool(s *server.MCPServer, t domain.Tool, logger *slog.Logger) {
	s.AddTool(
		mcp.NewToolWithRawSchema(t.Name(), t.Description(), t.Schema().Parameters),
		toolHandler(t, logger),
	)
}

// toolHandler adapts Tool.Execute to the protocol handler signature. Tool
// failures become isError results, never protocol errors: the calling agent
// should read the failure text, not crash the session.
func toolHandler(t domain.Tool, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			// A call with no arguments block still validates against
			// an object schema.
			args = map[string]any{}
		}
		params, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result, err := t.Execute(ctx, params)
		if err != nil {
			logger.Error("tool execution error", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}

// apiInfoText renders the API info resource body. The base URL comes from
// configuration so the document matches the backend this instance talks to.
func apiInfoText(baseURL string) string {
	return fmt.Sprintf(`Video Processing API Information:
Base URL: %s

Endpoints:
- POST /process-video: Upload and process video files
- POST /process-photo: Upload and process photo files
- POST /retrieve-clips: Search for video clips using natural language
- GET /health: Check API status

The API processes videos by:
1. Splitting videos into chunks
2. Generating transcriptions using OpenAI Whisper
3. Creating visual descriptions using Anthropic Claude
4. Storing in vector database (Pinecone) for semantic search
5. Providing presigned URLs for video access`, baseURL)
}

func registerAPIInfoResource(s *server.MCPServer, baseURL string) {
	resource := mcp.NewResource(apiInfoURI, "Video Processing API",
		mcp.WithResourceDescription("Information about the video processing API endpoints and capabilities."),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(resource, apiInfoHandler(baseURL))
}

func apiInfoHandler(baseURL string) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      apiInfoURI,
				MIMEType: "text/plain",
				Text:     apiInfoText(baseURL),
			},
		}, nil
	}
}

func registerSearchPrompt(s *server.MCPServer) {
	prompt := mcp.NewPrompt("search_videos_prompt",
		mcp.WithPromptDescription("Generate a prompt to search for videos about a specific topic."),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("The topic to search the video collection for"),
			mcp.RequiredArgument(),
		),
	)
	s.AddPrompt(prompt, searchPromptHandler)
}

func searchPromptHandler(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := strings.TrimSpace(req.Params.Arguments["topic"])
	if topic == "" {
		return nil, fmt.Errorf("'topic' is required: %w", domain.ErrInvalidInput)
	}

	text := fmt.Sprintf("Search for video clips related to: %s. "+
		"Please use the query_videos tool to find relevant content.", topic)
	return mcp.NewGetPromptResult(
		"Video search prompt",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
