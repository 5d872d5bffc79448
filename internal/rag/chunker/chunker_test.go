package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 10, 2, false},
		{"no overlap", 10, 0, false},
		{"overlap equals size", 10, 10, true},
		{"overlap larger than size", 10, 20, true},
		{"negative overlap", 10, -1, true},
		{"zero size", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWindow)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateChunks_StrideAndCoverage(t *testing.T) {
	cases := []struct{ n, size, overlap int }{
		{1, 5, 2}, {5, 5, 2}, {23, 5, 2}, {100, 10, 0}, {37, 8, 7}, {1000, 1000, 200}, {2501, 1000, 200},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("n%d_s%d_o%d", tc.n, tc.size, tc.overlap), func(t *testing.T) {
			chunks, err := CreateChunks(words(tc.n), tc.size, tc.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			covered := make([]bool, tc.n)
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				if i > 0 {
					assert.Equal(t, tc.size-tc.overlap, c.StartPos-chunks[i-1].StartPos)
				}
				assert.LessOrEqual(t, c.EndPos-c.StartPos, tc.size)
				assert.Len(t, strings.Fields(c.Content), c.EndPos-c.StartPos)
				for w := c.StartPos; w < c.EndPos; w++ {
					covered[w] = true
				}
			}
			for i, ok := range covered {
				assert.True(t, ok, "word %d not covered", i)
			}
		})
	}
}

func TestCreateChunks_EmptyText(t *testing.T) {
	chunks, err := CreateChunks(" \n\t  ", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCreateChunks_WindowContent(t *testing.T) {
	c, err := New(3, 1)
	require.NoError(t, err)

	chunks := c.CreateChunks("a b c d e f")
	require.Len(t, chunks, 3)
	assert.Equal(t, "a b c", chunks[0].Content)
	assert.Equal(t, "c d e", chunks[1].Content)
	assert.Equal(t, "e f", chunks[2].Content)
	assert.Equal(t, 6, chunks[2].EndPos)
}
