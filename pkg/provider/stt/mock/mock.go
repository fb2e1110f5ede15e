// Package mock provides a scriptable stt.Recognizer for tests.
package mock

import (
	"context"
	"sync"

	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
)

// Compile-time assertion that Recognizer satisfies stt.Recognizer.
var _ stt.Recognizer = (*Recognizer)(nil)

// Recognizer is a test double for stt.Recognizer. The zero value is ready
// to use and reports StateReady. Configure behaviour by setting the public
// fields before handing the mock to the code under test; all methods are
// safe for concurrent use.
type Recognizer struct {
	mu sync.Mutex

	// TranscribeFunc, when non-nil, handles Transcribe calls. Otherwise
	// Transcribe returns Text, Err.
	TranscribeFunc func(ctx context.Context, buf audio.Buffer) (string, error)

	// Text and Err are the canned Transcribe results when TranscribeFunc is nil.
	Text string
	Err  error

	// ReadyState is returned by State. The zero value maps to StateReady so
	// that an unconfigured mock behaves like a healthy recognizer.
	ReadyState stt.State
	stateSet   bool

	// Recorded calls.
	TranscribeCalls []audio.Buffer
	ReloadCalls     []string
	Closed          bool
}

// SetState overrides the state reported by State.
func (m *Recognizer) SetState(s stt.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadyState = s
	m.stateSet = true
}

// Transcribe implements stt.Recognizer.
func (m *Recognizer) Transcribe(ctx context.Context, buf audio.Buffer) (string, error) {
	m.mu.Lock()
	m.TranscribeCalls = append(m.TranscribeCalls, buf)
	fn, text, err := m.TranscribeFunc, m.Text, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, buf)
	}
	return text, err
}

// State implements stt.Recognizer.
func (m *Recognizer) State() stt.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stateSet {
		return stt.StateReady
	}
	return m.ReadyState
}

// Reload implements stt.Recognizer. It records the requested size.
func (m *Recognizer) Reload(modelSize string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReloadCalls = append(m.ReloadCalls, modelSize)
}

// Close implements stt.Recognizer.
func (m *Recognizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
