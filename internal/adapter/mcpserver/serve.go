package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"flashback-query/internal/infra/config"
	"flashback-query/internal/infra/middleware"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the MCP server on the configured transport and blocks until
// ctx is cancelled or the transport fails.
func Serve(ctx context.Context, s *server.MCPServer, cfg config.ServerConfig, logger *slog.Logger) error {
	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, s, cfg, logger)
	default:
		return serveStdio(ctx, s, os.Stdin, os.Stdout, logger)
	}
}

// serveStdio speaks the protocol over the given reader/writer pair. Returns
// nil on clean shutdown (EOF or context cancellation).
func serveStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	logger.Info("mcp server listening", "transport", "stdio")

	if err := server.NewStdioServer(s).Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio serve: %w", err)
	}
	logger.Info("mcp server stopped")
	return nil
}

// serveHTTP exposes the streamable HTTP transport behind the security
// middleware stack and shuts down gracefully when ctx is cancelled.
func serveHTTP(ctx context.Context, s *server.MCPServer, cfg config.ServerConfig, logger *slog.Logger) error {
	// Child context so the rate limiter's cleanup goroutine stops with us.
	rlCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpHandler(rlCtx, s, cfg.HTTP.Rate),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening", "transport", "http", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("mcp server stopped")
	return nil
}

// httpHandler mounts the streamable transport at /mcp plus a liveness
// endpoint, wrapped in security headers and per-IP rate limiting.
func httpHandler(ctx context.Context, s *server.MCPServer, rate config.RateLimitConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return middleware.SecurityHeaders(
		middleware.RateLimitWithConfig(ctx, middleware.RateLimitConfig{
			RequestsPerMin: rate.RequestsPerMin,
			Burst:          rate.Burst,
			TrustedProxies: rate.TrustedProxies,
		})(mux),
	)
}
