package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-analysis-mcp/internal/config"
	"github.com/ironsheep/image-analysis-mcp/internal/logger"
	"github.com/ironsheep/image-analysis-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-analysis-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-analysis-mcp - MCP server for photographic image analysis")
			fmt.Println()
			fmt.Println("Usage: image-analysis-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  IMAGE_MCP_LOG_LEVEL=debug          Log level: debug, info, warn, error")
			fmt.Println("  IMAGE_MCP_ANALYSIS_TIMEOUT=60s     Per-tool-call time limit")
			fmt.Println("  IMAGE_MCP_RAW_CONVERTER=dcraw      Binary used to develop RAW files")
			fmt.Println("  IMAGE_MCP_CACHE_ENTRIES=8          Decoded images kept in memory (0 disables)")
			fmt.Println("  IMAGE_MCP_DOMINANT_COLORS=5        Default n_colors for analyze_image")
			fmt.Println("  IMAGE_MCP_SEED=42                  Seed for dominant-color clustering")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
		"timeout":    cfg.AnalysisTimeout.String(),
		"raw":        cfg.RawConverter,
	}).Debug("Image analysis MCP server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	// Run blocks on stdin, so a signal must not wait for the next request.
	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Server error")
		}
	case <-ctx.Done():
		logger.Logger.Debug("Shutting down on signal")
	}
}
