// Package tts defines the Synthesizer interface for text-to-speech backends.
//
// Synthesis is strictly best-effort in the practice pipeline: it voices the
// target phrase so the user can hear a reference pronunciation. Failures are
// logged by the caller, never surfaced as session errors, and the pipeline
// works fully without any synthesizer configured.
package tts

import "context"

// Synthesizer is the abstraction over any text-to-speech backend.
//
// Implementations must be safe for concurrent use. Speak blocks until
// playback finishes (or fails); callers on a responsiveness-critical path
// must invoke it from a goroutine.
type Synthesizer interface {
	// Speak synthesises text and plays it through the default output device.
	Speak(ctx context.Context, text string) error

	// Close releases any resources held by the synthesizer.
	Close() error
}
