package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Adda-Baaj/stock-alerts/internal/app"
	"github.com/Adda-Baaj/stock-alerts/internal/config"
	"github.com/Adda-Baaj/stock-alerts/internal/logger"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	envErr := godotenv.Load()

	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, config.ErrUsage) {
			return exitUsage
		}
		return exitFailure
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.DebugObj(".env not loaded; using process environment", "config", map[string]any{
			"error": envErr.Error(),
		})
	}

	if err := cfg.Validate(); err != nil {
		log.ErrorObj("invalid configuration", "config_error", map[string]any{
			"error": err.Error(),
		})
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.Run(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("stock alerts run failed", "run_error", map[string]any{
			"error":    err.Error(),
			"entries":  report.Entries,
			"failures": len(report.Failures),
		})
		return exitFailure
	}
	return exitOK
}
