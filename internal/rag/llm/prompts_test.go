package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, "Base. Focus on giving concise, comprehensive summaries.", SystemPrompt("Base.", commonModels.Summarization))
	assert.Equal(t, "Base. Focus on current information and web sources.", SystemPrompt("Base.", commonModels.WebSearch))
	assert.Equal(t, "Base. Provide detailed analysis and insights.", SystemPrompt("Base.", commonModels.Analysis))
	assert.Equal(t, "Base.", SystemPrompt("Base.", commonModels.HybridSearch))
	assert.Equal(t, "Base.", SystemPrompt("Base.", commonModels.DocumentQuery))
	assert.NotEmpty(t, SystemPrompt("", commonModels.DocumentQuery))
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt("Who pays?", "[DOCUMENT] lease\nThe tenant pays.\n", nil)
	assert.Equal(t, "Context:\n[DOCUMENT] lease\nThe tenant pays.\n\n\nQuestion: Who pays?\n\nPlease provide a comprehensive answer based on the context above.", got)

	var history []string
	for i := 0; i < 8; i++ {
		history = append(history, fmt.Sprintf("turn-%d", i))
	}
	got = UserPrompt("q", "ctx", history)
	assert.True(t, strings.HasSuffix(got, "Context:\nctx\n\nQuestion: q\n\nPlease provide a comprehensive answer based on the context above."))
	assert.NotContains(t, got, "turn-2")
	assert.Contains(t, got, "turn-3")
	assert.Contains(t, got, "turn-7")
}

func TestSelectModel(t *testing.T) {
	logger := logger_i.NewLogger("test")
	var probed []string
	probe := func(ctx context.Context, model string) error {
		probed = append(probed, model)
		switch model {
		case "gpt-4o":
			return nil
		case "preferred":
			return errors.New("model_not_found")
		default:
			return errors.New("rate limited")
		}
	}

	model, err := SelectModel(context.Background(), []string{"preferred", "gpt-4o-mini", "preferred", "", "gpt-4o", "gpt-4"}, probe, logger)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
	assert.Equal(t, []string{"preferred", "gpt-4o-mini", "gpt-4o"}, probed)
}

func TestSelectModel_NoneAvailable(t *testing.T) {
	probe := func(ctx context.Context, model string) error { return errors.New("nope") }
	_, err := SelectModel(context.Background(), []string{"a", "b"}, probe, logger_i.NewLogger("test"))
	assert.ErrorIs(t, err, ErrNoModelAvailable)
	assert.Equal(t, "No models are available for your account", err.Error())
}

func TestGenerationError(t *testing.T) {
	assert.Equal(t, "I encountered an error generating the response: timeout", GenerationError(errors.New("timeout")))
}
