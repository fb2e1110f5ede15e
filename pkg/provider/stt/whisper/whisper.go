// Package whisper provides stt.Recognizer implementations backed by
// whisper.cpp: a native recognizer using the CGO bindings (model loaded
// in-process) and a server recognizer that talks to a running
// whisper-server binary over HTTP.
//
// The native recognizer is the default. Model files follow the ggml naming
// convention (ggml-<size>.bin, e.g. ggml-base.bin) inside a configured
// models directory. Loading happens on a background goroutine so that
// application startup and model-size changes never block the caller; the
// previous model keeps serving any in-flight transcription until the swap
// completes.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
)

const defaultLanguage = "en"

// ErrNotReady is returned by Transcribe when no model is loaded.
var ErrNotReady = errors.New("whisper: model is not loaded")

// Compile-time assertion that Recognizer satisfies stt.Recognizer.
var _ stt.Recognizer = (*Recognizer)(nil)

// Option is a functional option for configuring a [Recognizer].
type Option func(*Recognizer)

// WithLanguage sets the BCP-47 language code for transcription (e.g. "en",
// "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) { r.language = lang }
}

// WithLoadObserver registers fn to be called after each completed model
// load attempt with the model size, the time the load took, and the load
// error, if any. Loads superseded by a newer Reload are not reported.
func WithLoadObserver(fn func(modelSize string, took time.Duration, err error)) Option {
	return func(r *Recognizer) { r.onLoad = fn }
}

// Recognizer implements stt.Recognizer using the whisper.cpp CGO bindings.
// The whisper.cpp static library (libwhisper.a) and headers must be
// available at link time via LIBRARY_PATH and C_INCLUDE_PATH.
type Recognizer struct {
	modelsDir string
	language  string
	onLoad    func(modelSize string, took time.Duration, err error)

	// mu guards model, state, and gen. Transcribe holds the read lock for
	// the whole inference so a reload never closes a model mid-Process.
	mu    sync.RWMutex
	model whisperlib.Model
	state stt.State
	gen   int // load generation; stale async loads are discarded
}

// New creates a Recognizer and begins loading the named model size from
// modelsDir in the background. The returned recognizer reports
// [stt.StateLoading] until the load completes; poll [Recognizer.State]
// before transcribing.
func New(modelsDir, modelSize string, opts ...Option) (*Recognizer, error) {
	if modelsDir == "" {
		return nil, errors.New("whisper: modelsDir must not be empty")
	}
	if modelSize == "" {
		return nil, errors.New("whisper: modelSize must not be empty")
	}

	r := &Recognizer{
		modelsDir: modelsDir,
		language:  defaultLanguage,
		state:     stt.StateLoading,
	}
	for _, o := range opts {
		o(r)
	}

	go r.load(modelSize, r.gen)
	return r, nil
}

// modelPath returns the ggml model file path for a model size.
func (r *Recognizer) modelPath(size string) string {
	return filepath.Join(r.modelsDir, "ggml-"+size+".bin")
}

// load loads the model file for size and installs it unless a newer reload
// superseded this one while the file was loading.
func (r *Recognizer) load(size string, gen int) {
	path := r.modelPath(size)
	start := time.Now()
	model, err := whisperlib.New(path)
	took := time.Since(start)

	r.mu.Lock()

	if gen != r.gen {
		// A newer Reload won the race; discard this result.
		r.mu.Unlock()
		if model != nil {
			model.Close()
		}
		return
	}

	if err != nil {
		r.state = stt.StateUnavailable
		r.mu.Unlock()
		slog.Error("whisper model load failed", "model", path, "err", err)
	} else {
		old := r.model
		r.model = model
		r.state = stt.StateReady
		if old != nil {
			old.Close()
		}
		r.mu.Unlock()
		slog.Info("whisper model loaded", "model", path, "took", took)
	}

	if r.onLoad != nil {
		r.onLoad(size, took, err)
	}
}

// State implements stt.Recognizer.
func (r *Recognizer) State() stt.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Reload implements stt.Recognizer. It swaps to the named model size on a
// background goroutine; the current model keeps serving until the new one
// is ready.
func (r *Recognizer) Reload(modelSize string) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.state != stt.StateReady {
		// Nothing usable to keep serving from; report the load.
		r.state = stt.StateLoading
	}
	r.mu.Unlock()

	slog.Info("whisper model reload requested", "size", modelSize)
	go r.load(modelSize, gen)
}

// Transcribe implements stt.Recognizer. Each call creates its own
// whisper.cpp context from the shared model, so concurrent calls do not
// interfere.
func (r *Recognizer) Transcribe(ctx context.Context, buf audio.Buffer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.model == nil {
		return "", ErrNotReady
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", r.language, "err", err)
	}

	if err := wctx.Process(buf.Float32(), nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}

// Close releases the loaded model. Calling Close more than once is safe.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++ // invalidate any in-flight load
	if r.model != nil {
		err := r.model.Close()
		r.model = nil
		r.state = stt.StateUnavailable
		return err
	}
	r.state = stt.StateUnavailable
	return nil
}
