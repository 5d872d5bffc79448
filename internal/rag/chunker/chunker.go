package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

var ErrInvalidWindow = errors.New("invalid chunk window")

// Chunker splits text into overlapping windows of words.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window up front, a stride of zero or less would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidWindow, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidWindow, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }
func (c *Chunker) Stride() int  { return c.size - c.overlap }

func (c *Chunker) CreateChunks(text string) []commonModels.TextChunk {
	words := commonModels.Words(text)
	var chunks []commonModels.TextChunk

	for start := 0; start < len(words); start += c.Stride() {
		end := min(start+c.size, len(words))
		content := strings.Join(words[start:end], " ")
		if strings.TrimSpace(content) == "" {
			continue
		}
		chunks = append(chunks, commonModels.TextChunk{
			Index:    len(chunks),
			Content:  content,
			StartPos: start,
			EndPos:   end,
		})
	}
	return chunks
}

func CreateChunks(text string, size, overlap int) ([]commonModels.TextChunk, error) {
	c, err := New(size, overlap)
	if err != nil {
		return nil, err
	}
	return c.CreateChunks(text), nil
}
