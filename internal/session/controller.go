package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"voicebuddy/internal/history"
	"voicebuddy/internal/observe"
	"voicebuddy/internal/phrase"
	"voicebuddy/internal/profile"
	"voicebuddy/internal/score"
	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
	"voicebuddy/pkg/provider/tts"
)

// Setting keys accepted by [Controller.ChangeSetting].
const (
	SettingFocusArea       = "focus_area"
	SettingDifficultyLevel = "difficulty_level"
	SettingTopicInterest   = "topic_interest"
	SettingPhraseLength    = "phrase_length"
	SettingModelSize       = "recognizer_model_size"
)

// Capture is the slice of [audio.Capture] the controller needs: it owns
// the microphone between Start and Stop, and Stop hands the accumulated
// buffer to the caller exactly once.
type Capture interface {
	Start() error
	Stop() audio.Buffer
}

// ProfileStore persists the profile and settings documents.
// *[profile.Store] implements it.
type ProfileStore interface {
	SaveProfile(*profile.Profile) error
	SaveSettings(profile.Settings) error
}

// HistoryLog appends completed sessions to the session log.
// *[history.Log] implements it.
type HistoryLog interface {
	Insert(ctx context.Context, e history.Entry) (int64, error)
}

// Deps are the collaborators a [Controller] drives. Phrases, Recognizer,
// Capture, Store, and Profile are required; the rest may be nil (the
// matching feature is then disabled or skipped).
type Deps struct {
	Phrases     phrase.Provider
	Recognizer  stt.Recognizer
	Synthesizer tts.Synthesizer
	Capture     Capture
	Store       ProfileStore
	History     HistoryLog
	Metrics     *observe.Metrics
	Profile     *profile.Profile
	Settings    profile.Settings
}

// Controller is the session state machine. Construct with [New], start the
// completion loop with [Controller.Run], and consume [Controller.Events]
// from the presentation layer.
//
// All exported methods are safe for concurrent use. Shared session state
// is mutated only while applying completions on the Run goroutine or
// synchronously inside a command holding the state lock; background
// goroutines communicate exclusively through the completion queue.
type Controller struct {
	phrases    phrase.Provider
	recognizer stt.Recognizer
	synth      tts.Synthesizer
	capture    Capture
	store      ProfileStore
	log        HistoryLog
	metrics    *observe.Metrics
	now        func() time.Time

	mu        sync.Mutex
	state     State
	id        uint64
	current   phrase.Phrase
	startedAt time.Time
	profile   *profile.Profile
	settings  profile.Settings

	// saveMu orders settings writes: the holder both mutates and persists,
	// so the newest mutation is always the newest document on disk.
	saveMu sync.Mutex

	completions chan completion
	events      chan Event
}

// completion is a tagged result posted by a background task. Completions
// whose tag no longer matches the live session identifier are discarded.
type completion interface {
	sessionID() uint64
}

type phraseDone struct {
	id  uint64
	p   phrase.Phrase
	err error
}

type transcriptDone struct {
	id         uint64
	transcript string
	took       time.Duration
	recorded   time.Duration
	startedAt  time.Time
	err        error
}

func (c phraseDone) sessionID() uint64     { return c.id }
func (c transcriptDone) sessionID() uint64 { return c.id }

// New constructs a Controller from its collaborators.
func New(d Deps) (*Controller, error) {
	switch {
	case d.Phrases == nil:
		return nil, errors.New("session: Deps.Phrases is required")
	case d.Recognizer == nil:
		return nil, errors.New("session: Deps.Recognizer is required")
	case d.Capture == nil:
		return nil, errors.New("session: Deps.Capture is required")
	case d.Store == nil:
		return nil, errors.New("session: Deps.Store is required")
	case d.Profile == nil:
		return nil, errors.New("session: Deps.Profile is required")
	}
	if d.Metrics == nil {
		d.Metrics = observe.DefaultMetrics()
	}

	return &Controller{
		phrases:     d.Phrases,
		recognizer:  d.Recognizer,
		synth:       d.Synthesizer,
		capture:     d.Capture,
		store:       d.Store,
		log:         d.History,
		metrics:     d.Metrics,
		now:         time.Now,
		profile:     d.Profile,
		settings:    d.Settings,
		completions: make(chan completion, 16),
		events:      make(chan Event, 32),
	}, nil
}

// Events returns the stream consumed by the presentation layer. The
// channel is buffered; when the consumer falls far behind, events are
// dropped rather than blocking the session.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Run drains background completions until ctx is cancelled. It must be
// running for any session to make progress past a command call.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case comp := <-c.completions:
			c.apply(ctx, comp)
		}
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phrase returns the active target phrase, or the zero value when none is
// set.
func (c *Controller) Phrase() phrase.Phrase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Settings returns a snapshot of the current practice settings.
func (c *Controller) Settings() profile.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Stats returns the profile quick stats: total sessions, best score, and
// average score.
func (c *Controller) Stats() (total, best int, avg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.TotalSessions, c.profile.BestScore, c.profile.Average()
}

// RequestPhrase starts a new session: it supersedes any in-flight
// background work and asks the phrase provider for a new target phrase.
// The phrase arrives asynchronously as a [PhraseUpdated] event. Valid in
// every state except Recording.
func (c *Controller) RequestPhrase(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateRecording {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot request a phrase while recording", ErrInvalidTransition)
	}
	c.id++
	id := c.id
	req := phrase.Request{
		FocusArea:  c.settings.FocusArea,
		Difficulty: c.settings.DifficultyLevel,
		Topic:      c.settings.TopicInterest,
		Length:     c.settings.PhraseLength,
	}
	c.mu.Unlock()

	go func() {
		start := c.now()
		p, err := c.phrases.Generate(ctx, req)
		c.metrics.PhraseGenDuration.Record(ctx, c.now().Sub(start).Seconds())
		c.completions <- phraseDone{id: id, p: p, err: err}
	}()
	return nil
}

// StartRecording opens the microphone for the active phrase. Valid only in
// PhraseReady, and only when the recognizer is ready.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePhraseReady {
		return fmt.Errorf("%w: start recording in state %s", ErrInvalidTransition, c.state)
	}
	switch c.recognizer.State() {
	case stt.StateUnavailable:
		return fmt.Errorf("%w: speech recognition is disabled", ErrCapabilityUnavailable)
	case stt.StateLoading:
		return fmt.Errorf("%w: speech model is still loading", ErrCapabilityLoading)
	}
	if err := c.capture.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	c.state = StateRecording
	c.startedAt = c.now()
	c.publish(RecordingStarted{})
	return nil
}

// StopRecording ends capture, takes ownership of the recorded buffer, and
// dispatches transcription in the background. The result arrives as
// [TranscriptReady] plus [ScoreReady] events, or an [ErrorEvent] wrapping
// [ErrRecognitionFailed]. Valid only in Recording.
func (c *Controller) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return fmt.Errorf("%w: stop recording in state %s", ErrInvalidTransition, c.state)
	}
	buf := c.capture.Stop()
	c.state = StateTranscribing
	id := c.id
	startedAt := c.startedAt
	recorded := c.now().Sub(startedAt)
	c.publish(RecordingStopped{})
	c.mu.Unlock()

	go func() {
		t0 := c.now()
		text, err := c.recognizer.Transcribe(ctx, buf)
		c.completions <- transcriptDone{
			id:         id,
			transcript: text,
			took:       c.now().Sub(t0),
			recorded:   recorded,
			startedAt:  startedAt,
			err:        err,
		}
	}()
	return nil
}

// Speak voices the active phrase through the synthesizer, best-effort:
// failures are logged, never published as session errors. Returns
// [ErrCapabilityUnavailable] when no synthesizer is configured.
func (c *Controller) Speak(ctx context.Context) error {
	c.mu.Lock()
	text := c.current.Text
	c.mu.Unlock()

	if c.synth == nil {
		return fmt.Errorf("%w: no synthesizer configured", ErrCapabilityUnavailable)
	}
	if text == "" {
		return fmt.Errorf("%w: no phrase to speak", ErrInvalidTransition)
	}

	go func() {
		start := c.now()
		if err := c.synth.Speak(ctx, text); err != nil {
			slog.Warn("speech synthesis failed", "err", err)
			c.metrics.RecordProviderError(ctx, "tts")
			return
		}
		c.metrics.SynthesisDuration.Record(ctx, c.now().Sub(start).Seconds())
	}()
	return nil
}

// ChangeSetting updates one practice setting and persists the settings
// document. Changing the model size additionally triggers an asynchronous
// recognizer reload; a session already past PhraseReady is unaffected.
func (c *Controller) ChangeSetting(key, value string) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	prev := c.settings
	switch key {
	case SettingFocusArea:
		c.settings.FocusArea = value
	case SettingDifficultyLevel:
		c.settings.DifficultyLevel = value
	case SettingTopicInterest:
		c.settings.TopicInterest = value
	case SettingPhraseLength:
		c.settings.PhraseLength = value
	case SettingModelSize:
		if !stt.ValidModelSize(value) {
			c.mu.Unlock()
			return fmt.Errorf("session: unknown model size %q", value)
		}
		c.settings.RecognizerModelSize = value
	default:
		c.mu.Unlock()
		return fmt.Errorf("session: unknown setting %q", key)
	}
	updated := c.settings
	c.mu.Unlock()

	if err := c.store.SaveSettings(updated); err != nil {
		slog.Error("save settings failed", "err", err)
		c.publish(ErrorEvent{Err: fmt.Errorf("%w: save settings: %v", ErrPersistenceFailed, err)})
	}
	if key == SettingModelSize && value != prev.RecognizerModelSize {
		slog.Info("reloading speech model", "size", value)
		c.recognizer.Reload(value)
	}
	return nil
}

// Reset abandons the live session and returns to Idle, discarding any
// in-flight background work. Used for teardown.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRecording {
		c.capture.Stop()
	}
	c.id++
	c.state = StateIdle
	c.current = phrase.Phrase{}
}

// apply folds one background completion into the session, discarding it
// when its tag no longer matches the live session.
func (c *Controller) apply(ctx context.Context, comp completion) {
	c.mu.Lock()
	if comp.sessionID() != c.id {
		c.mu.Unlock()
		slog.Debug("discarding completion from superseded session",
			"completion", fmt.Sprintf("%T", comp),
			"tag", comp.sessionID(),
		)
		return
	}

	switch v := comp.(type) {
	case phraseDone:
		c.applyPhrase(v)
	case transcriptDone:
		c.applyTranscript(ctx, v)
	default:
		c.mu.Unlock()
	}
}

// applyPhrase is called with the state lock held and releases it.
func (c *Controller) applyPhrase(v phraseDone) {
	if v.err != nil || v.p.Text == "" {
		// Providers recover locally (the chain ends in fixed fallbacks), so
		// an error here means a miswired provider. Keep the previous phrase
		// rather than surfacing a hard error for this step.
		c.mu.Unlock()
		slog.Error("phrase generation failed with no fallback", "err", v.err)
		return
	}

	c.current = v.p
	c.state = StatePhraseReady
	c.mu.Unlock()

	c.publish(PhraseUpdated{Phrase: v.p.Text, Rationale: v.p.Rationale})
}

// applyTranscript is called with the state lock held and releases it.
func (c *Controller) applyTranscript(ctx context.Context, v transcriptDone) {
	if v.err != nil {
		c.state = StatePhraseReady
		c.mu.Unlock()

		slog.Error("transcription failed", "err", v.err)
		c.metrics.RecordProviderError(ctx, "stt")
		c.publish(ErrorEvent{Err: fmt.Errorf("%w: %v", ErrRecognitionFailed, v.err)})
		return
	}

	res := score.Score(c.current.Text, v.transcript)
	target := c.current.Text
	c.profile.Record(profile.SessionRecord{
		CompletedAt: c.now(),
		Phrase:      target,
		Transcript:  v.transcript,
		Score:       res.Percentage,
	})
	prof := c.profile
	c.state = StateScored
	c.mu.Unlock()

	slog.Info("session scored",
		"score", res.Percentage,
		"transcription_took", v.took,
	)
	c.metrics.TranscriptionDuration.Record(ctx, v.took.Seconds())
	c.metrics.RecordSession(ctx, res.Percentage)

	// The profile write happens inside the scored transition so a completed
	// session survives a crash right after it is shown. A failed write is
	// surfaced but never blocks the in-memory flow.
	if err := c.store.SaveProfile(prof); err != nil {
		slog.Error("save profile failed", "err", err)
		c.publish(ErrorEvent{Err: fmt.Errorf("%w: save profile: %v", ErrPersistenceFailed, err)})
	}
	if c.log != nil {
		entry := history.Entry{
			StartedAt:  v.startedAt,
			Phrase:     target,
			Transcript: v.transcript,
			Score:      res.Percentage,
			Duration:   v.recorded,
		}
		if _, err := c.log.Insert(ctx, entry); err != nil {
			slog.Warn("session log insert failed", "err", err)
		}
	}

	c.publish(TranscriptReady{Transcript: v.transcript})
	c.publish(ScoreReady{Result: res})
}

// publish sends ev without ever blocking the session.
func (c *Controller) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("event buffer full, dropping event", "event", fmt.Sprintf("%T", ev))
	}
}
