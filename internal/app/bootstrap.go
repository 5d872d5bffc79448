// Package app wires the RAG stack from Settings. Both binaries and the MCP server start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/rag"
	"github.com/akolanti/insightRAG/internal/rag/chunker"
	"github.com/akolanti/insightRAG/internal/rag/embedding"
	"github.com/akolanti/insightRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/insightRAG/internal/rag/embedding/localEmbedding"
	"github.com/akolanti/insightRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/insightRAG/internal/rag/ingest"
	"github.com/akolanti/insightRAG/internal/rag/llm"
	"github.com/akolanti/insightRAG/internal/rag/llm/gemini"
	"github.com/akolanti/insightRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB/sqliteDB"
	"github.com/akolanti/insightRAG/internal/rag/webSearch"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

type App struct {
	Settings *config.Settings
	RAG      rag.Service

	store  *vectorDB.Store
	logger *logger_i.Logger
}

type options struct {
	searchCache webSearch.Cache
	noWeb       bool
}

type Option func(*options)

// WithSearchCache puts cache in front of the web search engines.
func WithSearchCache(cache webSearch.Cache) Option {
	return func(o *options) { o.searchCache = cache }
}

// WithoutWeb builds the service with web retrieval disabled.
func WithoutWeb() Option {
	return func(o *options) { o.noWeb = true }
}

// InitLogging installs the process logger. quiet keeps stdout free for an interactive terminal.
func InitLogging(settings *config.Settings, quiet bool) (io.Closer, error) {
	return logger_i.Init(logger_i.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		File:   settings.LogFile,
		Quiet:  quiet,
	})
}

// Build creates every component. Any error here is fatal for the caller.
func Build(ctx context.Context, settings *config.Settings, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := logger_i.NewLogger("Bootstrap")

	processor, err := ingest.NewProcessor(nil, ingest.DefaultConverters(nil)...)
	if err != nil {
		return nil, fmt.Errorf("document processor: %w", err)
	}

	ch, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	embedder, err := NewEmbedder(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}

	index, err := NewIndex(ctx, settings, embedder)
	if err != nil {
		return nil, fmt.Errorf("vector index: %w", err)
	}
	store := vectorDB.NewStore(index, embedder, ch)

	provider, err := NewLLM(ctx, settings)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("llm: %w", err), store.Close())
	}

	deps := rag.Dependencies{
		Processor: processor,
		Store:     store,
		LLM:       provider,
		TopK:      settings.TopKResults,
	}
	if !o.noWeb {
		var webOpts []webSearch.Option
		if o.searchCache != nil {
			webOpts = append(webOpts, webSearch.WithCache(o.searchCache))
		}
		deps.Web = webSearch.NewProvider(nil, webOpts...)
	}

	logger.Info("RAG stack ready",
		"llm", provider.Model(),
		"embedding", embedder.ModelName(),
		"dimension", embedder.Dimension(),
		"backend", settings.VectorBackend,
		"web", deps.Web != nil,
	)
	return &App{
		Settings: settings,
		RAG:      rag.NewService(deps),
		store:    store,
		logger:   logger,
	}, nil
}

func (a *App) Close() error {
	a.logger.Info("Closing vector index")
	return a.store.Close()
}

func NewEmbedder(ctx context.Context, settings *config.Settings) (embedding.Embedder, error) {
	switch settings.EmbeddingProvider {
	case "local":
		return localEmbedding.New(settings.EmbeddingModel, settings.EmbeddingDimension), nil
	case "openai":
		return openaiEmbedding.New(settings), nil
	case "google":
		return googleEmbedding.New(ctx, settings)
	}
	return nil, fmt.Errorf("%w: unknown embedding provider %q", config.ErrInvalidSettings, settings.EmbeddingProvider)
}

func NewIndex(ctx context.Context, settings *config.Settings, embedder embedding.Embedder) (vectorDB.Index, error) {
	switch settings.VectorBackend {
	case "sqlite":
		db, err := sqliteDB.Open(ctx, settings.VectorDBPath, embedder.ModelName(), embedder.Dimension())
		if err != nil {
			return nil, err
		}
		return db, nil
	case "qdrant":
		db, err := qdrantDB.New(ctx, settings, embedder.ModelName(), embedder.Dimension())
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("%w: unknown vector backend %q", config.ErrInvalidSettings, settings.VectorBackend)
}

// NewLLM probes the configured provider, so it fails fast when no model answers.
func NewLLM(ctx context.Context, settings *config.Settings) (llm.Provider, error) {
	switch settings.LLMProvider {
	case "openai":
		return openaiLLM.New(ctx, settings)
	case "gemini":
		return gemini.New(ctx, settings)
	}
	return nil, fmt.Errorf("%w: unknown LLM provider %q", config.ErrInvalidSettings, settings.LLMProvider)
}
