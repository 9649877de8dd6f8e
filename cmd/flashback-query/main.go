package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"flashback-query/internal/adapter/mcpserver"
	"flashback-query/internal/adapter/tool"
	"flashback-query/internal/domain"
	"flashback-query/internal/infra/config"
	"flashback-query/internal/infra/logger"
	"flashback-query/internal/infra/tracer"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Handle help flag first
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch os.Args[1] {
	case "doctor":
		if err := runDoctor(); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	case "encrypt-secret":
		if err := runEncryptSecret(); err != nil {
			fmt.Fprintf(os.Stderr, "encrypt-secret: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("flashback-query %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'flashback-query --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`flashback-query - MCP server for natural-language video search

USAGE:
    flashback-query [COMMAND] [FLAGS]

COMMANDS:
    doctor          Check configuration and backend connectivity
    encrypt-secret  Encrypt a value for config.yaml (prints an enc: string)
    version         Print the version

    (no command) - Run the MCP server with existing config

FLAGS:
    -h, --help      Show this help message
    --config PATH   Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml (optional)
    Environment: FLASHBACK_* variables override config
    Required:    backend.base_url  (or FLASHBACK_BACKEND_URL)
                 backend.user_id   (or FLASHBACK_USER_ID)

EXAMPLES:
    flashback-query                           # Serve MCP over stdio
    FLASHBACK_TRANSPORT=http flashback-query  # Serve over streamable HTTP
    flashback-query doctor                    # Check system health
    flashback-query encrypt-secret            # Encrypt a user id for config`)
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Backend client (+ breaker)
	backend := tool.NewVideoBackend(cfg.Backend.BaseURL, cfg.Backend.UserID, log,
		tool.WithTimeout(cfg.Backend.Timeout))

	var searcher tool.VideoSearcher = backend
	if cfg.Backend.Breaker.Enabled {
		searcher = tool.NewBreakerSearcher(backend,
			uint32(cfg.Backend.Breaker.MaxFailures), cfg.Backend.Breaker.OpenTimeout, log)
	}

	// 4. Tools
	tools, err := buildTools(searcher, log)
	if err != nil {
		return fmt.Errorf("tools: %w", err)
	}

	// 5. MCP server
	srv := mcpserver.New(mcpserver.Deps{
		Name:    cfg.Server.Name,
		Version: version,
		BaseURL: cfg.Backend.BaseURL,
		Tools:   tools,
		Logger:  log,
	})

	// 6. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("flashback-query starting",
		"version", version,
		"transport", cfg.Server.Transport,
		"backend", cfg.Backend.BaseURL,
		"user", tool.MaskUserID(cfg.Backend.UserID),
		"breaker", cfg.Backend.Breaker.Enabled,
		"tools", len(tools),
	)

	// 7. Serve until the context is cancelled
	return mcpserver.Serve(ctx, srv, cfg.Server, log)
}

// buildTools constructs the tool set, each wrapped with schema validation.
func buildTools(searcher tool.VideoSearcher, log *slog.Logger) ([]domain.Tool, error) {
	base := []domain.Tool{
		tool.NewQueryVideosTool(searcher, log),
		tool.NewSetupInstructionsTool(log),
	}

	tools := make([]domain.Tool, 0, len(base))
	for _, t := range base {
		wrapped, err := tool.WithSchemaValidation(t)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", t.Name(), err)
		}
		tools = append(tools, wrapped)
	}
	return tools, nil
}

func configPath() string {
	// Check --config flag in os.Args.
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("FLASHBACK_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func runEncryptSecret() error {
	var arg string
	if len(os.Args) > 2 {
		arg = os.Args[2]
	}
	return encryptSecret(arg, os.Stdin, os.Stdout, os.Stderr)
}

// encryptSecret encrypts a plaintext value with the passphrase from
// FLASHBACK_CONFIG_KEY and prints the enc: form for config.yaml. The value
// comes from the argument, or from stdin when no argument is given so the
// secret stays out of shell history.
func encryptSecret(arg string, in io.Reader, out, errOut io.Writer) error {
	passphrase := os.Getenv("FLASHBACK_CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("FLASHBACK_CONFIG_KEY must be set to the encryption passphrase")
	}

	plaintext := arg
	if plaintext == "" {
		fmt.Fprint(errOut, "Value to encrypt: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read value: %w", err)
		}
		plaintext = strings.TrimRight(line, "\r\n")
	}
	if plaintext == "" {
		return fmt.Errorf("nothing to encrypt")
	}

	encrypted, err := config.EncryptValue(plaintext, passphrase)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	fmt.Fprintf(out, "enc:%s\n", encrypted)
	fmt.Fprintln(errOut, "Use this as backend.user_id in config.yaml; the server decrypts it with FLASHBACK_CONFIG_KEY at startup.")
	return nil
}
