// Package mock provides a scriptable tts.Synthesizer for tests.
package mock

import (
	"context"
	"sync"

	"voicebuddy/pkg/provider/tts"
)

// Compile-time assertion that Synthesizer satisfies tts.Synthesizer.
var _ tts.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a test double for tts.Synthesizer. The zero value accepts
// all Speak calls and records them. All methods are safe for concurrent use.
type Synthesizer struct {
	mu sync.Mutex

	// Err is returned by every Speak call.
	Err error

	// SpokenTexts records the text of each Speak call in order.
	SpokenTexts []string

	Closed bool
}

// Speak implements tts.Synthesizer.
func (m *Synthesizer) Speak(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SpokenTexts = append(m.SpokenTexts, text)
	return m.Err
}

// Spoken returns a copy of the recorded Speak texts.
func (m *Synthesizer) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.SpokenTexts))
	copy(out, m.SpokenTexts)
	return out
}

// Close implements tts.Synthesizer.
func (m *Synthesizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
