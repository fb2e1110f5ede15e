package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
)

// Compile-time assertion that ServerRecognizer satisfies stt.Recognizer.
var _ stt.Recognizer = (*ServerRecognizer)(nil)

// ServerOption is a functional option for configuring a [ServerRecognizer].
type ServerOption func(*ServerRecognizer)

// WithServerLanguage sets the language code sent with every inference
// request. Defaults to "en".
func WithServerLanguage(lang string) ServerOption {
	return func(r *ServerRecognizer) { r.language = lang }
}

// WithServerTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithServerTimeout(d time.Duration) ServerOption {
	return func(r *ServerRecognizer) { r.httpClient.Timeout = d }
}

// ServerRecognizer implements stt.Recognizer against a running
// whisper-server binary, which exposes a REST API at POST /inference. Each
// Transcribe call encodes the buffer as WAV and submits one batch inference
// request. Because the model lives in the server process, Reload only
// updates the model hint forwarded with subsequent requests.
type ServerRecognizer struct {
	serverURL  string
	language   string
	httpClient *http.Client

	mu    sync.RWMutex
	model string // model hint forwarded to the server; empty = server default
}

// NewServer creates a ServerRecognizer targeting the whisper-server at
// serverURL (e.g. "http://localhost:8080"). serverURL must be non-empty.
func NewServer(serverURL string, opts ...ServerOption) (*ServerRecognizer, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	r := &ServerRecognizer{
		serverURL:  serverURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// State implements stt.Recognizer. The server owns the model, so the
// recognizer is considered ready as soon as it is constructed; a server
// that is down surfaces as a transcription error instead.
func (r *ServerRecognizer) State() stt.State { return stt.StateReady }

// Reload implements stt.Recognizer by updating the model hint sent with
// subsequent inference requests. The server decides whether to honour it.
func (r *ServerRecognizer) Reload(modelSize string) {
	r.mu.Lock()
	r.model = modelSize
	r.mu.Unlock()
}

// Close implements stt.Recognizer. There is nothing to release.
func (r *ServerRecognizer) Close() error { return nil }

// Transcribe implements stt.Recognizer. It POSTs the buffer as a WAV file
// to the server's /inference endpoint as multipart/form-data and returns
// the transcribed text.
func (r *ServerRecognizer) Transcribe(ctx context.Context, buf audio.Buffer) (string, error) {
	r.mu.RLock()
	model := r.model
	r.mu.RUnlock()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(buf.WAV()); err != nil {
		return "", fmt.Errorf("whisper: write wav data: %w", err)
	}
	if r.language != "" {
		if err := mw.WriteField("language", r.language); err != nil {
			return "", fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			return "", fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}
