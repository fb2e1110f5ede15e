package session

import "voicebuddy/internal/score"

// Event is a notification published by the [Controller] for the
// presentation layer. The concrete types below are the full set.
type Event interface {
	isEvent()
}

// PhraseUpdated announces a new target phrase and its rationale.
type PhraseUpdated struct {
	Phrase    string
	Rationale string
}

// RecordingStarted announces that the microphone is live.
type RecordingStarted struct{}

// RecordingStopped announces that capture ended and transcription began.
type RecordingStopped struct{}

// TranscriptReady carries the recognised text of the user's attempt.
type TranscriptReady struct {
	Transcript string
}

// ScoreReady carries the scored result of the completed session.
type ScoreReady struct {
	Result score.Result
}

// ErrorEvent carries a user-visible failure. Err wraps one of the package
// sentinel errors.
type ErrorEvent struct {
	Err error
}

func (PhraseUpdated) isEvent()    {}
func (RecordingStarted) isEvent() {}
func (RecordingStopped) isEvent() {}
func (TranscriptReady) isEvent()  {}
func (ScoreReady) isEvent()       {}
func (ErrorEvent) isEvent()       {}
