// Package config provides the configuration schema and loader for the
// VoiceBuddy application.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// STTBackend selects the speech-recognition implementation.
type STTBackend string

const (
	// BackendNative runs whisper in-process through the CGO bindings.
	BackendNative STTBackend = "native"

	// BackendServer sends audio to an external whisper-server instance.
	BackendServer STTBackend = "server"
)

// IsValid reports whether b is a recognised recognizer backend.
func (b STTBackend) IsValid() bool {
	return b == BackendNative || b == BackendServer
}

// Config is the root configuration structure for VoiceBuddy.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity. Defaults to "info".
	LogLevel LogLevel `yaml:"log_level"`

	// DataDir is where the profile, settings, and session history live.
	// Defaults to "data" relative to the working directory.
	DataDir string `yaml:"data_dir"`

	// MetricsAddr, when non-empty, enables a Prometheus /metrics listener
	// on the given TCP address (e.g., "localhost:9091").
	MetricsAddr string `yaml:"metrics_addr"`

	Recognizer  RecognizerConfig  `yaml:"recognizer"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
	LLM         LLMConfig         `yaml:"llm"`
}

// RecognizerConfig selects and parameterises the speech recognizer.
type RecognizerConfig struct {
	// Backend picks the implementation. Defaults to "native".
	Backend STTBackend `yaml:"backend"`

	// ModelsDir holds the ggml model files for the native backend.
	ModelsDir string `yaml:"models_dir"`

	// Language is the spoken language hint passed to whisper (e.g. "en").
	Language string `yaml:"language"`

	// ServerURL is the whisper-server base URL for the server backend
	// (e.g., "http://localhost:8080").
	ServerURL string `yaml:"server_url"`
}

// SynthesizerConfig configures the optional hear-the-phrase voice.
type SynthesizerConfig struct {
	// URL is the Coqui TTS server base URL. Empty disables synthesis;
	// the rest of the pipeline is unaffected.
	URL string `yaml:"url"`

	// LanguageID selects a language for multi-lingual models. May be empty.
	LanguageID string `yaml:"language_id"`
}

// LLMConfig configures the AI phrase generator. When APIKey is empty the
// builtin phrase tables serve alone.
type LLMConfig struct {
	// APIKey authenticates against the chat-completion API.
	APIKey string `yaml:"api_key"`

	// Model names the chat model (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// BaseURL overrides the default API endpoint, e.g. for a local
	// OpenAI-compatible server. Leave empty for the provider default.
	BaseURL string `yaml:"base_url"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		DataDir:  "data",
		Recognizer: RecognizerConfig{
			Backend:   BackendNative,
			ModelsDir: "models",
			Language:  "en",
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
	}
}
