// Package coqui provides a tts.Synthesizer backed by a locally-running
// Coqui TTS server (ghcr.io/coqui-ai/tts-cpu). Synthesis is performed via
// GET /api/tts, which returns a complete WAV file; the audio is decoded and
// played through the default output device.
package coqui

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/tts"
)

const apiTTSEndpoint = "/api/tts"

// Compile-time assertion that Synthesizer satisfies tts.Synthesizer.
var _ tts.Synthesizer = (*Synthesizer)(nil)

// Option is a functional option for configuring a [Synthesizer].
type Option func(*Synthesizer)

// WithLanguage sets the language id forwarded to the server (e.g. "en").
func WithLanguage(lang string) Option {
	return func(s *Synthesizer) { s.language = lang }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.httpClient.Timeout = d }
}

// Synthesizer implements tts.Synthesizer against a standard Coqui TTS
// server. It is safe for concurrent use, though playback of overlapping
// Speak calls will mix at the device.
type Synthesizer struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// New creates a Synthesizer that targets the Coqui server at serverURL
// (e.g. "http://localhost:5002"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Synthesizer, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	s := &Synthesizer{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Speak implements tts.Synthesizer. It requests synthesis of text, decodes
// the returned WAV, and blocks until playback through the default output
// device completes.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	q := url.Values{}
	q.Set("text", text)
	if s.language != "" {
		q.Set("language_id", s.language)
	}
	endpoint := s.serverURL + apiTTSEndpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("coqui: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coqui: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coqui: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coqui: read response body: %w", err)
	}

	samples, rate, err := decodeWAV(data)
	if err != nil {
		return fmt.Errorf("coqui: decode response: %w", err)
	}

	if err := audio.PlayPCM(samples, rate); err != nil {
		return fmt.Errorf("coqui: playback: %w", err)
	}
	return nil
}

// Close implements tts.Synthesizer. There is nothing to release.
func (s *Synthesizer) Close() error { return nil }

// decodeWAV extracts 16-bit mono PCM samples and the sample rate from a
// RIFF/WAV file. Multi-channel audio is down-mixed by taking the first
// channel; non-PCM or non-16-bit encodings are rejected.
func decodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a RIFF/WAVE file")
	}

	var (
		sampleRate int
		channels   int
		bits       int
		pcm        []byte
	)

	// Walk the chunk list; fmt must precede data per the spec.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, errors.New("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported WAV format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, errors.New("missing fmt or data chunk")
	}
	if bits != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d (want 16)", bits)
	}
	if channels < 1 {
		channels = 1
	}

	frames := len(pcm) / (2 * channels)
	samples := make([]int16, frames)
	for i := range frames {
		idx := i * channels * 2
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
	}
	return samples, sampleRate, nil
}
