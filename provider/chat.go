package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/polyglot"
)

// Defaults target Gemini through its OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel   = "gemini-1.5-pro"
	DefaultTimeout = 60 * time.Second

	translateMaxTokens = 8192
	detectMaxTokens    = 64
)

// ChatProvider implements Provider on top of a chat completions API.
type ChatProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// ChatConfig holds configuration for the chat provider.
type ChatConfig struct {
	APIKey      string        // API key for the endpoint
	BaseURL     string        // Endpoint base URL (default: Gemini OpenAI-compatible endpoint)
	Model       string        // Model to use (default: "gemini-1.5-pro")
	Temperature float32       // Temperature for generation (default: 0.1)
	Timeout     time.Duration // Per-request HTTP timeout (default: 60s)
}

// NewChatProvider creates a new chat completions provider.
func NewChatProvider(cfg ChatConfig) *ChatProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	config.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	return &ChatProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Model returns the configured model name.
func (p *ChatProvider) Model() string {
	return p.model
}

// Translate translates req.Text and returns only the translated text.
func (p *ChatProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	text, err := p.complete(ctx, buildTranslatePrompt(req), translateMaxTokens)
	if err != nil {
		return "", err
	}
	return text, nil
}

// DetectLanguage asks the model for the ISO 639-1 code of text.
func (p *ChatProvider) DetectLanguage(ctx context.Context, text string) (string, error) {
	raw, err := p.complete(ctx, buildDetectPrompt(text), detectMaxTokens)
	if err != nil {
		return "", err
	}
	return polyglot.NormalizeLanguageCode(raw)
}

func (p *ChatProvider) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.temperature,
		TopP:        1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &polyglot.ProviderError{
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &polyglot.ProviderError{
			Message:   "no response from model",
			Retryable: true,
		}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &polyglot.ProviderError{
			Message:   "empty response from model",
			Retryable: true,
		}
	}
	return content, nil
}

func buildTranslatePrompt(req TranslateRequest) string {
	from := req.SourceLang
	if from == "" || from == polyglot.AutoDetect {
		from = "the detected language"
	}
	return fmt.Sprintf(`Translate the following text from %s to %s. Return only the translated text without any additional explanation or context:

%s`, from, req.TargetLang, req.Text)
}

func buildDetectPrompt(text string) string {
	return fmt.Sprintf(`Detect the language of the following text. Return only the ISO 639-1 language code (such as 'en', 'es', 'fr', etc.) without any explanation:

%s`, text)
}

func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "connection reset", "temporary"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// userAgentTransport stamps outgoing requests with the polyglot user agent.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", polyglot.UserAgent())
	return t.base.RoundTrip(req)
}

var _ Provider = (*ChatProvider)(nil)
