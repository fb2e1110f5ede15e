// Package app wires all VoiceBuddy subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems from config, Run executes the session loop and the user
// interface, and Shutdown tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithRecognizer, WithCapture, etc.). When an option is not provided,
// New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"voicebuddy/internal/config"
	"voicebuddy/internal/health"
	"voicebuddy/internal/history"
	"voicebuddy/internal/observe"
	"voicebuddy/internal/phrase"
	"voicebuddy/internal/profile"
	"voicebuddy/internal/session"
	"voicebuddy/internal/tui"
	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
	"voicebuddy/pkg/provider/stt/whisper"
	"voicebuddy/pkg/provider/tts"
	"voicebuddy/pkg/provider/tts/coqui"
)

// historyFile is the session log database inside the data directory.
const historyFile = "history.db"

// App owns all subsystem lifetimes and orchestrates the practice pipeline.
type App struct {
	cfg *config.Config

	recognizer stt.Recognizer
	synth      tts.Synthesizer
	phrases    phrase.Provider
	capture    session.Capture
	store      session.ProfileStore
	histLog    session.HistoryLog
	metrics    *observe.Metrics
	ui         func(ctx context.Context, ctrl *session.Controller) error

	ctrl *session.Controller

	// closers are called in reverse order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithRecognizer injects a speech recognizer instead of creating one from
// config.
func WithRecognizer(r stt.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

// WithSynthesizer injects a speech synthesizer.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(a *App) { a.synth = s }
}

// WithPhraseProvider injects a phrase provider instead of building the
// default chain.
func WithPhraseProvider(p phrase.Provider) Option {
	return func(a *App) { a.phrases = p }
}

// WithCapture injects a microphone capture instead of opening the default
// device.
func WithCapture(c session.Capture) Option {
	return func(a *App) { a.capture = c }
}

// WithProfileStore injects a profile store instead of the data-dir JSON
// store.
func WithProfileStore(s session.ProfileStore) Option {
	return func(a *App) { a.store = s }
}

// WithHistory injects a session log instead of the data-dir SQLite log.
func WithHistory(h session.HistoryLog) Option {
	return func(a *App) { a.histLog = h }
}

// WithMetrics injects a metrics instance instead of the process default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithUI replaces the Bubble Tea interface, e.g. with a no-op for headless
// tests. The function should block until ctx is cancelled or the user
// quits.
func WithUI(ui func(ctx context.Context, ctrl *session.Controller) error) Option {
	return func(a *App) { a.ui = ui }
}

// New creates an App by wiring all subsystems together. Initialisation is
// synchronous except for the recognizer model load, which proceeds in the
// background and gates recording until ready.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, ui: runTUI}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	prof, settings, err := a.initPersistence()
	if err != nil {
		return nil, fmt.Errorf("app: init persistence: %w", err)
	}
	if err := a.initRecognizer(settings); err != nil {
		return nil, fmt.Errorf("app: init recognizer: %w", err)
	}
	a.initSynthesizer()
	a.initPhrases()
	if err := a.initCapture(); err != nil {
		return nil, fmt.Errorf("app: init capture: %w", err)
	}

	a.ctrl, err = session.New(session.Deps{
		Phrases:     a.phrases,
		Recognizer:  a.recognizer,
		Synthesizer: a.synth,
		Capture:     a.capture,
		Store:       a.store,
		History:     a.histLog,
		Metrics:     a.metrics,
		Profile:     prof,
		Settings:    settings,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create controller: %w", err)
	}

	return a, nil
}

// Controller exposes the session controller, mainly for tests.
func (a *App) Controller() *session.Controller {
	return a.ctrl
}

// initPersistence loads the profile and settings and opens the session
// log. A failing session log is downgraded to a warning: the JSON profile
// remains the durable record.
func (a *App) initPersistence() (*profile.Profile, profile.Settings, error) {
	if a.store == nil {
		a.store = profile.NewStore(a.cfg.DataDir)
	}

	loader, ok := a.store.(interface {
		LoadProfile() (*profile.Profile, error)
		LoadSettings() (profile.Settings, error)
	})
	if !ok {
		// Injected store without load support: start fresh.
		return &profile.Profile{}, profile.DefaultSettings(), nil
	}

	prof, err := loader.LoadProfile()
	if err != nil {
		return nil, profile.Settings{}, err
	}
	settings, err := loader.LoadSettings()
	if err != nil {
		return nil, profile.Settings{}, err
	}

	if a.histLog == nil {
		log, err := history.Open(filepath.Join(a.cfg.DataDir, historyFile))
		if err != nil {
			slog.Warn("session log unavailable", "err", err)
		} else {
			a.histLog = log
			a.closers = append(a.closers, log.Close)
		}
	}

	return prof, settings, nil
}

// initRecognizer builds the configured speech backend unless one was
// injected.
func (a *App) initRecognizer(settings profile.Settings) error {
	if a.recognizer != nil {
		return nil
	}

	size := settings.RecognizerModelSize
	if !stt.ValidModelSize(size) {
		size = "base"
	}

	switch a.cfg.Recognizer.Backend {
	case config.BackendServer:
		rec, err := whisper.NewServer(a.cfg.Recognizer.ServerURL,
			whisper.WithServerLanguage(a.cfg.Recognizer.Language),
		)
		if err != nil {
			return err
		}
		a.recognizer = rec

	default:
		rec, err := whisper.New(a.cfg.Recognizer.ModelsDir, size,
			whisper.WithLanguage(a.cfg.Recognizer.Language),
			whisper.WithLoadObserver(func(modelSize string, took time.Duration, err error) {
				if err != nil {
					a.metrics.RecordProviderError(context.Background(), "stt")
					return
				}
				a.metrics.RecordModelLoad(context.Background(), modelSize, took)
			}),
		)
		if err != nil {
			return err
		}
		a.recognizer = rec
	}

	a.closers = append(a.closers, a.recognizer.Close)
	return nil
}

// initSynthesizer builds the optional Coqui voice. Failures disable the
// hear-the-phrase feature but never the pipeline.
func (a *App) initSynthesizer() {
	if a.synth != nil || a.cfg.Synthesizer.URL == "" {
		return
	}

	var opts []coqui.Option
	if a.cfg.Synthesizer.LanguageID != "" {
		opts = append(opts, coqui.WithLanguage(a.cfg.Synthesizer.LanguageID))
	}
	synth, err := coqui.New(a.cfg.Synthesizer.URL, opts...)
	if err != nil {
		slog.Warn("speech synthesis unavailable", "err", err)
		return
	}
	a.synth = synth
	a.closers = append(a.closers, synth.Close)
}

// initPhrases builds the provider chain: the LLM upstream when configured,
// then the builtin tables.
func (a *App) initPhrases() {
	if a.phrases != nil {
		return
	}

	chain := phrase.NewChain()
	if a.cfg.LLM.APIKey != "" {
		var opts []phrase.LLMOption
		if a.cfg.LLM.BaseURL != "" {
			opts = append(opts, phrase.WithBaseURL(a.cfg.LLM.BaseURL))
		}
		llm, err := phrase.NewLLM(a.cfg.LLM.APIKey, a.cfg.LLM.Model, opts...)
		if err != nil {
			slog.Warn("AI phrase generation unavailable", "err", err)
		} else {
			chain.Add("llm", llm)
		}
	}
	chain.Add("builtin", phrase.NewBuiltin())
	a.phrases = chain
}

// initCapture opens the audio subsystem unless a capture was injected.
func (a *App) initCapture() error {
	if a.capture != nil {
		return nil
	}
	capture, err := audio.NewCapture()
	if err != nil {
		return err
	}
	a.capture = capture
	a.closers = append(a.closers, capture.Close)
	return nil
}

// Run executes the session loop, the optional metrics listener, and the
// user interface, blocking until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.ctrl.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		checks := []health.Checker{health.RecognizerCheck(a.recognizer)}
		if log, ok := a.histLog.(health.Pinger); ok {
			checks = append(checks, health.SessionLogCheck(log))
		}
		health.New(checks...).Register(mux)

		srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			slog.Info("metrics listener started", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutCancel()
			return srv.Shutdown(shutCtx)
		})
	}

	g.Go(func() error {
		// The UI returning for any reason ends the whole group.
		defer cancel()
		return a.ui(ctx, a.ctrl)
	})

	return g.Wait()
}

// runTUI is the default user interface.
func runTUI(ctx context.Context, ctrl *session.Controller) error {
	p := tea.NewProgram(tui.NewModel(ctrl), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("app: run interface: %w", err)
	}
	return nil
}

// Shutdown tears down all subsystems in reverse-init order. It respects
// the context deadline: if ctx expires before all closers finish,
// remaining closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))
		a.ctrl.Reset()

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
