// Package stt defines the Recognizer interface for speech-to-text backends.
//
// A recognizer wraps a transcription engine (a locally-loaded whisper.cpp
// model, or a whisper-server instance reached over HTTP) behind a one-shot
// interface: the practice pipeline captures a complete utterance, then asks
// for a single transcription of it. There is deliberately no streaming
// surface here — partial results are out of scope for the pipeline.
//
// Model (re)loading is asynchronous. Callers poll [Recognizer.State] to
// decide whether recording may start; a recognizer that failed to initialise
// reports [StateUnavailable] for the rest of the run.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"slices"

	"voicebuddy/pkg/audio"
)

// ValidModelSizes lists the whisper model sizes a [Recognizer] accepts for
// Reload, smallest first.
var ValidModelSizes = []string{"tiny", "base", "small", "medium"}

// ValidModelSize reports whether size names a known model size.
func ValidModelSize(size string) bool {
	return slices.Contains(ValidModelSizes, size)
}

// State describes recognizer readiness.
type State int

const (
	// StateUnavailable means the recognizer could not be initialised and the
	// recording feature is disabled for this run.
	StateUnavailable State = iota

	// StateLoading means a model is loading or reloading; retry shortly.
	StateLoading

	// StateReady means the recognizer accepts Transcribe calls.
	StateReady
)

// String returns a short lowercase label for logging.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unavailable"
	}
}

// Recognizer is the abstraction over any speech-to-text backend.
//
// Implementations must be safe for concurrent use. Transcribe may take
// several seconds and must therefore never be invoked from a
// responsiveness-critical goroutine.
type Recognizer interface {
	// Transcribe converts a complete audio buffer into text. The buffer must
	// be 16 kHz mono 16-bit PCM (see [audio.Buffer]). The caller retains
	// exclusive ownership of buf for the duration of the call.
	//
	// Returns an error if the model is not ready, inference fails, or ctx is
	// cancelled first.
	Transcribe(ctx context.Context, buf audio.Buffer) (string, error)

	// State reports the current readiness of the recognizer. The value may
	// change at any time as asynchronous loads complete.
	State() State

	// Reload switches the recognizer to the named model size (e.g. "tiny",
	// "base", "small", "medium") asynchronously and returns immediately.
	// State reports StateLoading until the swap completes; an in-flight
	// Transcribe keeps using the previous model until it returns.
	Reload(modelSize string)

	// Close releases the recognizer's resources. Calling Close more than
	// once is safe.
	Close() error
}
