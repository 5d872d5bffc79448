package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/customHttpClient"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag/llm"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var fallbackModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-4", "gpt-4.1-mini-2025-04-14"}

var errEmptyCompletion = errors.New("completion returned no choices")

type llmClient struct {
	api          openai.Client
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int64
	logger       *logger_i.Logger
}

// New builds the client and probes the preferred model and the fallbacks in order.
func New(ctx context.Context, settings *config.Settings, opts ...option.RequestOption) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_openai")
	base := []option.RequestOption{
		option.WithAPIKey(settings.OpenAIAPIKey),
		option.WithHTTPClient(customHttpClient.Shared(config.LLMGenerateTimeout)),
	}
	if settings.OpenAIURL != "" {
		base = append(base, option.WithBaseURL(settings.OpenAIURL))
	}

	c := &llmClient{
		api:          openai.NewClient(append(base, opts...)...),
		systemPrompt: settings.SystemPrompt,
		temperature:  settings.Temperature,
		maxTokens:    int64(min(settings.MaxTokens, config.ResponseTokenLimit)),
		logger:       logger,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = config.ResponseTokenLimit
	}

	candidates := append([]string{settings.OpenAIModel}, fallbackModels...)
	model, err := llm.SelectModel(ctx, candidates, c.probe, logger)
	if err != nil {
		return nil, err
	}
	c.model = model
	return c, nil
}

func (c *llmClient) probe(ctx context.Context, model string) error {
	_, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("test")},
		MaxTokens: openai.Int(1),
	})
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
		return fmt.Errorf("model %s not found: %w", model, err)
	}
	return err
}

func (c *llmClient) Model() string { return c.model }

func (c *llmClient) GenerateResponse(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generate", time.Since(start)) }()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llm.SystemPrompt(c.systemPrompt, req.TaskType)),
			openai.UserMessage(llm.UserPrompt(req.Question, contextBlock, req.History)),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err == nil && len(resp.Choices) == 0 {
		err = errEmptyCompletion
	}
	if err != nil {
		log.Error("Chat completion failed", "model", c.model, "error", err)
		return llm.GenerationError(err)
	}
	log.Debug("Chat completion done", "model", c.model, "finishReason", resp.Choices[0].FinishReason)
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
