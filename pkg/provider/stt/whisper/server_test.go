package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicebuddy/pkg/audio"
	"voicebuddy/pkg/provider/stt"
)

func testBuffer() audio.Buffer {
	return make(audio.Buffer, audio.SampleRate)
}

func TestNewServer_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(""); err == nil {
		t.Fatal("NewServer(\"\") = nil error, want error")
	}
}

func TestServerTranscribe(t *testing.T) {
	t.Parallel()

	var gotLanguage, gotModel, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path = %q, want /inference", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")
		if fhs := r.MultipartForm.File["file"]; len(fhs) == 1 {
			gotFilename = fhs[0].Filename
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "  she sells seashells \n"})
	}))
	defer srv.Close()

	rec, err := NewServer(srv.URL, WithServerLanguage("de"))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	rec.Reload("small")

	text, err := rec.Transcribe(context.Background(), testBuffer())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "she sells seashells" {
		t.Errorf("text = %q, want trimmed transcript", text)
	}
	if gotLanguage != "de" {
		t.Errorf("language field = %q, want %q", gotLanguage, "de")
	}
	if gotModel != "small" {
		t.Errorf("model field = %q, want %q", gotModel, "small")
	}
	if gotFilename != "audio.wav" {
		t.Errorf("filename = %q, want %q", gotFilename, "audio.wav")
	}
}

func TestServerTranscribe_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec, err := NewServer(srv.URL)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if _, err := rec.Transcribe(context.Background(), testBuffer()); err == nil {
		t.Fatal("Transcribe on HTTP 500 = nil error, want error")
	}
}

func TestServerTranscribe_BadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	rec, err := NewServer(srv.URL)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if _, err := rec.Transcribe(context.Background(), testBuffer()); err == nil {
		t.Fatal("Transcribe on bad JSON = nil error, want error")
	}
}

func TestServerState_AlwaysReady(t *testing.T) {
	t.Parallel()

	rec, err := NewServer("http://localhost:9999")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if got := rec.State(); got != stt.StateReady {
		t.Errorf("State() = %v, want %v", got, stt.StateReady)
	}
}
