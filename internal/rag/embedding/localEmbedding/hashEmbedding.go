package localEmbedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/akolanti/insightRAG/internal/rag/embedding"
)

// hashEmbedder is an offline embedder: unigrams and bigrams are hashed into a fixed number
// of signed buckets and the vector is L2 normalised. Identical texts map to identical vectors.
type hashEmbedder struct {
	model     string
	dimension int
}

func New(model string, dimension int) embedding.Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &hashEmbedder{model: model, dimension: dimension}
}

func (h *hashEmbedder) ModelName() string { return h.model }
func (h *hashEmbedder) Dimension() int    { return h.dimension }

func (h *hashEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.embed(query), nil
}

func (h *hashEmbedder) BatchEmbedding(ctx context.Context, chunks []string, _ bool) ([][]float32, error) {
	out := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, h.embed(c))
	}
	return out, nil
}

func (h *hashEmbedder) embed(text string) []float32 {
	vec := make([]float32, h.dimension)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1.0)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return embedding.Normalize(vec)
}

func (h *hashEmbedder) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dimension))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
