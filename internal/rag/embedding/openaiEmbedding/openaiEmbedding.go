package openaiEmbedding

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/customHttpClient"
	"github.com/akolanti/insightRAG/internal/rag/embedding"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

func New(settings *config.Settings, opts ...option.RequestOption) embedding.Embedder {
	base := []option.RequestOption{
		option.WithAPIKey(settings.OpenAIAPIKey),
		option.WithHTTPClient(customHttpClient.Shared(config.LLMGenerateTimeout)),
	}
	if settings.OpenAIURL != "" {
		base = append(base, option.WithBaseURL(settings.OpenAIURL))
	}
	return &client{
		api:       openai.NewClient(append(base, opts...)...),
		model:     settings.EmbeddingModel,
		dimension: settings.EmbeddingDimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) ModelName() string { return c.model }
func (c *client) Dimension() int    { return c.dimension }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query}, false)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding sends every chunk in one request; the openai endpoint has no async batch mode here.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string, _ bool) ([][]float32, error) {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model: openai.EmbeddingModel(c.model),
	}
	if strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		log.Error("Error getting embeddings from OpenAI", "error", err)
		return nil, err
	}
	if len(resp.Data) != len(chunks) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(chunks))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, d := range data {
		vec := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			vec[j] = float32(x)
		}
		out[i] = vec
	}
	return out, nil
}
