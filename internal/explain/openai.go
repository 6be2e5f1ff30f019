package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint. Any other
// OpenAI-compatible server (OpenAI, Ollama, a local proxy) works as well.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// OpenAIConfig configures the chat-completions client.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAIExplainer asks a chat-completions endpoint for an explanation.
type OpenAIExplainer struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ Explainer = (*OpenAIExplainer)(nil)

// NewOpenAIExplainer creates an explainer for the given endpoint.
// Retries are left to the caller's deadline: one retry at most.
func NewOpenAIExplainer(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIExplainer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("explain: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	)

	return &OpenAIExplainer{
		client: &client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Explain sends the tutor prompt and parses the labelled answer.
func (e *OpenAIExplainer) Explain(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	e.logger.Info("requesting AI analysis", slog.String("model", e.model), slog.String("kind", string(req.Execution.Kind)))

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(req)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("explain: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("explain: no choices returned")
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		return nil, errors.New("explain: empty completion")
	}

	e.logger.Info("AI analysis completed", slog.Duration("duration", time.Since(start)))
	return parseResponse(text), nil
}
