package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tphakala/rave-go/cmd"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/logging"
	"github.com/tphakala/rave-go/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := conf.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	closeLogFile, err := logging.EnableFileLogging(settings)
	if err != nil {
		logging.Warn("failed to enable file logging", "error", err)
	} else {
		defer func() { _ = closeLogFile() }()
	}

	if err := telemetry.Init(settings, version); err != nil {
		// Telemetry is best effort, never fatal
		logging.Warn("failed to initialize telemetry", "error", err)
	}
	defer telemetry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	rootCmd.Version = version
	return rootCmd.ExecuteContext(ctx)
}
