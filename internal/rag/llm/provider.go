package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

var ErrNoModelAvailable = errors.New("No models are available for your account")

// Provider turns a question plus retrieved context into an answer. GenerateResponse does not
// fail: provider errors come back as a readable message in the answer text.
type Provider interface {
	GenerateResponse(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string
	Model() string
}

// Probe sends a minimal request to check that a model answers for this account.
type Probe func(ctx context.Context, model string) error

// SelectModel returns the first candidate that answers a probe. Duplicates are probed once.
func SelectModel(ctx context.Context, candidates []string, probe Probe, logger *logger_i.Logger) (string, error) {
	seen := make(map[string]struct{}, len(candidates))
	for _, model := range candidates {
		if model == "" {
			continue
		}
		if _, dup := seen[model]; dup {
			continue
		}
		seen[model] = struct{}{}

		probeCtx, cancel := context.WithTimeout(ctx, config.ModelProbeTimeout)
		err := probe(probeCtx, model)
		cancel()
		if err == nil {
			logger.Info("Using model", "model", model)
			return model, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Warn("Model not available, trying next", "model", model, "error", err)
	}
	return "", ErrNoModelAvailable
}

func GenerationError(err error) string {
	return fmt.Sprintf("I encountered an error generating the response: %v", err)
}
