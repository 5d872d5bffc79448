package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag/llm"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"google.golang.org/genai"
)

var fallbackModels = []string{"gemini-2.5-flash", "gemini-2.0-flash"}

type llmClient struct {
	client       *genai.Client
	modelName    string
	systemPrompt string
	temperature  float32
	maxTokens    int32
	logger       *logger_i.Logger
}

// New creates the Gemini client and picks the first model that answers a probe.
func New(ctx context.Context, settings *config.Settings) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.GeminiAPIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	g := &llmClient{
		client:       c,
		systemPrompt: settings.SystemPrompt,
		temperature:  float32(settings.Temperature),
		maxTokens:    int32(min(settings.MaxTokens, config.ResponseTokenLimit)),
		logger:       logger,
	}
	if g.maxTokens <= 0 {
		g.maxTokens = config.ResponseTokenLimit
	}

	candidates := append([]string{settings.GeminiModel}, fallbackModels...)
	model, err := llm.SelectModel(ctx, candidates, g.probe, logger)
	if err != nil {
		return nil, err
	}
	g.modelName = model
	logger.Info("Gemini client created", "model", model)
	return g, nil
}

func (c *llmClient) probe(ctx context.Context, model string) error {
	_, err := c.client.Models.GenerateContent(ctx, model, genai.Text("test"), &genai.GenerateContentConfig{MaxOutputTokens: 1})
	return err
}

func (c *llmClient) Model() string { return c.modelName }

func (c *llmClient) GenerateResponse(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generate", time.Since(start)) }()

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: llm.SystemPrompt(c.systemPrompt, req.TaskType)}},
		},
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(llm.UserPrompt(req.Question, contextBlock, req.History)),
		contentConfig,
	)
	if err == nil && result == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		log.Error("Gemini generation failed", "model", c.modelName, "error", err)
		return llm.GenerationError(err)
	}
	return strings.TrimSpace(result.Text())
}
