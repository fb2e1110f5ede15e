// Command voicebuddy is a terminal speech-practice assistant: it suggests
// a phrase, records the user saying it, transcribes the recording, and
// scores how close the attempt came.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voicebuddy/internal/app"
	"voicebuddy/internal/config"
	"voicebuddy/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicebuddy: %v\n", err)
		return 1
	}

	// The TUI owns the terminal, so logs go to a file in the data
	// directory instead of stderr.
	logFile, logger := newLogger(cfg)
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	slog.Info("voicebuddy starting",
		"config", *configPath,
		"data_dir", cfg.DataDir,
		"backend", cfg.Recognizer.Backend,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicebuddy: %v\n", err)
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// loadConfig reads the named config file, or falls back to defaults when
// no path was given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found", path)
		}
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger opens the log file under the data directory. If it cannot be
// opened, logging is discarded rather than fighting the TUI for stderr.
func newLogger(cfg *config.Config) (*os.File, *slog.Logger) {
	var lvl slog.Level
	switch cfg.LogLevel {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var w io.Writer = io.Discard
	var f *os.File
	if err := os.MkdirAll(cfg.DataDir, 0o755); err == nil {
		f, err = os.OpenFile(filepath.Join(cfg.DataDir, "voicebuddy.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
		}
	}
	return f, slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
