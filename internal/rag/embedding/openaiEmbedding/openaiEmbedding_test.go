package openaiEmbedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchEmbedding_OrdersByIndex(t *testing.T) {
	models := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		model, _ := body["model"].(string)
		models <- model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	settings := config.Defaults()
	settings.OpenAIAPIKey = "sk-test"
	settings.OpenAIURL = srv.URL + "/v1/"
	settings.EmbeddingModel = "text-embedding-3-small"
	settings.EmbeddingDimension = 2

	e := New(settings, option.WithMaxRetries(0))
	vecs, err := e.BatchEmbedding(context.Background(), []string{"first", "second"}, false)
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-small", <-models)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, 2, e.Dimension())
}

func TestBatchEmbedding_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[],"usage":{"prompt_tokens":0,"total_tokens":0}}`))
	}))
	defer srv.Close()

	settings := config.Defaults()
	settings.OpenAIAPIKey = "sk-test"
	settings.OpenAIURL = srv.URL + "/v1/"

	_, err := New(settings, option.WithMaxRetries(0)).GetEmbedding(context.Background(), "hello")
	assert.Error(t, err)
}
