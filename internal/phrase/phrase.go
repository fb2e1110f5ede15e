// Package phrase supplies practice phrases for the session pipeline.
//
// A [Provider] turns the user's practice settings into a candidate phrase
// plus a human-readable rationale. Two implementations exist: [Builtin]
// serves curated tables keyed by focus area and topic, and [LLM] asks a
// chat model to write a bespoke phrase. [Chain] composes providers so that
// an upstream failure falls through to the next provider — with the builtin
// tables last, a session can always proceed and phrase generation never
// surfaces an error to the user.
package phrase

import "context"

// Request carries the practice settings a provider selects against.
type Request struct {
	// FocusArea is the practice emphasis (e.g. "pronunciation", "fluency",
	// "tongue_twisters"). Unknown values fall back to general practice.
	FocusArea string

	// Difficulty is the user's self-assessed level (e.g. "beginner",
	// "advanced"). Providers use it for the rationale and for generation
	// hints; it never filters the builtin tables.
	Difficulty string

	// Topic is a free-text interest (e.g. "animals, space"). Providers may
	// tailor the phrase towards it when they recognise it.
	Topic string

	// Length is the preferred phrase length: "short", "medium", or "long".
	Length string
}

// Phrase is a candidate practice phrase. Text is always non-empty for a
// successful generation.
type Phrase struct {
	// Text is the phrase to read aloud.
	Text string

	// Rationale explains why this phrase suits the requested settings.
	Rationale string
}

// Provider generates practice phrases. Implementations may be random; the
// only hard guarantee callers rely on is that a nil error implies a
// non-empty Phrase.Text.
type Provider interface {
	// Generate returns one candidate phrase for the request.
	Generate(ctx context.Context, req Request) (Phrase, error)
}
