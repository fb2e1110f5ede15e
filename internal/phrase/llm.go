package phrase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const llmSystemPrompt = `You are a speech-practice coach. Write one practice phrase ` +
	`matching the user's focus area, difficulty, topic interest, and length preference. ` +
	`Respond with only a JSON object of the form ` +
	`{"phrase": "<the phrase>", "explanation": "<one sentence on why it fits>"}.`

// Compile-time assertion that LLM satisfies Provider.
var _ Provider = (*LLM)(nil)

// LLMOption is a functional option for configuring an [LLM] provider.
type LLMOption func(*LLM)

// WithBaseURL overrides the default API base URL, e.g. to target a local
// OpenAI-compatible server.
func WithBaseURL(url string) LLMOption {
	return func(l *LLM) { l.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout. Defaults to 20 s.
func WithTimeout(d time.Duration) LLMOption {
	return func(l *LLM) { l.timeout = d }
}

// LLM generates bespoke practice phrases through a chat-completion API.
// It is safe for concurrent use.
type LLM struct {
	client  oai.Client
	model   string
	baseURL string
	timeout time.Duration
}

// NewLLM constructs an LLM provider. apiKey and model must be non-empty.
func NewLLM(apiKey, model string, opts ...LLMOption) (*LLM, error) {
	if apiKey == "" {
		return nil, errors.New("phrase: apiKey must not be empty")
	}
	if model == "" {
		return nil, errors.New("phrase: model must not be empty")
	}

	l := &LLM{model: model, timeout: 20 * time.Second}
	for _, o := range opts {
		o(l)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: l.timeout}),
	}
	if l.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(l.baseURL))
	}

	l.client = oai.NewClient(reqOpts...)
	return l, nil
}

// Generate implements Provider. It asks the model for a phrase and parses
// the JSON reply; malformed replies are an error so a [Chain] can fall
// through to the builtin tables.
func (l *LLM) Generate(ctx context.Context, req Request) (Phrase, error) {
	resp, err := l.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(l.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(llmSystemPrompt),
			oai.UserMessage(userPrompt(req)),
		},
		Temperature:         param.NewOpt(0.8),
		MaxCompletionTokens: param.NewOpt(int64(200)),
	})
	if err != nil {
		return Phrase{}, fmt.Errorf("phrase: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Phrase{}, errors.New("phrase: empty choices in response")
	}

	return parseReply(resp.Choices[0].Message.Content)
}

// userPrompt renders the request settings for the model.
func userPrompt(req Request) string {
	focus := req.FocusArea
	if focus == "" {
		focus = "general"
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "beginner"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Focus area: %s. Difficulty: %s. Length preference: %s.", focus, difficulty, req.Length)
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		fmt.Fprintf(&b, " Topic interest: %s.", topic)
	}
	return b.String()
}

// parseReply extracts the phrase JSON from the model output, tolerating
// surrounding prose and markdown code fences.
func parseReply(content string) (Phrase, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Phrase{}, fmt.Errorf("phrase: no JSON object in model reply %q", content)
	}

	var out struct {
		Phrase      string `json:"phrase"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return Phrase{}, fmt.Errorf("phrase: parse model reply: %w", err)
	}
	if strings.TrimSpace(out.Phrase) == "" {
		return Phrase{}, errors.New("phrase: model returned an empty phrase")
	}

	return Phrase{
		Text:      strings.TrimSpace(out.Phrase),
		Rationale: strings.TrimSpace(out.Explanation),
	}, nil
}
