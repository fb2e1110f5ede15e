// Package session implements the practice-session state machine at the
// heart of VoiceBuddy.
//
// A [Controller] drives one phrase-attempt cycle at a time through the
// states Idle → PhraseReady → Recording → Transcribing → Scored. Command
// methods ([Controller.RequestPhrase], [Controller.StartRecording], and so
// on) validate state synchronously and return sentinel errors on invalid
// transitions; slow work — phrase generation, transcription, synthesis —
// runs on background goroutines that post completions back to a single
// queue drained by [Controller.Run]. Every background task is tagged with
// the session identifier it belongs to, and completions whose identifier
// no longer matches the live session are discarded, so a stale
// transcription can never corrupt a newer session.
//
// State observable from the outside flows through the [Event] stream
// returned by [Controller.Events]; a presentation layer consumes events
// and issues commands, never touching controller internals.
package session

import "errors"

// State identifies where the live session is in its cycle.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota

	// StatePhraseReady means a target phrase is displayed and recording may
	// begin.
	StatePhraseReady

	// StateRecording means the microphone is capturing the user's attempt.
	StateRecording

	// StateTranscribing means a transcription is in flight.
	StateTranscribing

	// StateScored means the session completed with a scored result.
	StateScored
)

// String returns a short lowercase label for logging.
func (s State) String() string {
	switch s {
	case StatePhraseReady:
		return "phrase_ready"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateScored:
		return "scored"
	default:
		return "idle"
	}
}

// Session failure taxonomy. Command methods and [ErrorEvent] values wrap
// these sentinels; match with [errors.Is].
var (
	// ErrInvalidTransition rejects a command that is not valid in the
	// current state, without altering it.
	ErrInvalidTransition = errors.New("session: invalid transition")

	// ErrCapabilityUnavailable means the required capability never
	// initialised and is disabled for this run.
	ErrCapabilityUnavailable = errors.New("session: capability unavailable")

	// ErrCapabilityLoading means the recognizer model is still loading;
	// retry shortly.
	ErrCapabilityLoading = errors.New("session: capability loading")

	// ErrDeviceUnavailable means the microphone could not be opened.
	ErrDeviceUnavailable = errors.New("session: device unavailable")

	// ErrRecognitionFailed means the transcription call errored. The
	// session returns to PhraseReady with the same phrase so the user can
	// retry.
	ErrRecognitionFailed = errors.New("session: recognition failed")

	// ErrPersistenceFailed means a profile or settings write failed. The
	// in-memory session flow is unaffected.
	ErrPersistenceFailed = errors.New("session: persistence failed")
)
