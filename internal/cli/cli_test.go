package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/insightRAG/internal/app"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRag struct {
	asked   []commonModels.QueryRequest
	loaded  []string
	results map[string]commonModels.LoadResult
	loadErr error
	answer  commonModels.QueryResponse
}

func (f *fakeRag) LoadDocuments(ctx context.Context, path string) (map[string]commonModels.LoadResult, error) {
	f.loaded = append(f.loaded, path)
	return f.results, f.loadErr
}
func (f *fakeRag) AskQuestion(ctx context.Context, req commonModels.QueryRequest) commonModels.QueryResponse {
	f.asked = append(f.asked, req)
	return f.answer
}
func (f *fakeRag) Status(ctx context.Context) commonModels.SystemStatus {
	return commonModels.SystemStatus{LoadedDocuments: len(f.results), IndexedChunks: 12, SystemReady: true, Model: "gpt-4o-mini", EmbeddingModel: "local-hash-384", SupportedFileTypes: []string{".md", ".pdf"}}
}
func (f *fakeRag) SupportsFile(path string) bool { return true }
func (f *fakeRag) SearchDocuments(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}
func (f *fakeRag) SearchWeb(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}
func (f *fakeRag) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	return j
}
func (f *fakeRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job { return j }

type harness struct {
	rag     *fakeRag
	envFile string
	opts    int
	closed  bool
}

func (h *harness) factory(ctx context.Context, envFile string, opts ...app.Option) (*Session, error) {
	h.envFile = envFile
	h.opts = len(opts)
	return &Session{RAG: h.rag, DocumentsDir: "./documents", Close: func() { h.closed = true }}, nil
}

func run(t *testing.T, h *harness, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(h.factory)
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func twoDocAnswer() commonModels.QueryResponse {
	return commonModels.QueryResponse{
		Answer:         "The tenant pays monthly.",
		TaskType:       string(commonModels.DocumentQuery),
		ProcessingTime: 1250 * time.Millisecond,
		HasSources:     true,
		TotalSources:   3,
		Sources: []commonModels.SourceRef{
			{Type: commonModels.SourceDocument, Title: "Lease", Source: "lease.pdf"},
			{Type: commonModels.SourceDocument, Title: "Lease", Source: "lease.pdf"},
			{Type: commonModels.SourceDocument, Title: "Memo", Source: "memo.md"},
		},
	}
}

func TestChat_DefaultCommandLoopsUntilQuit(t *testing.T) {
	h := &harness{rag: &fakeRag{
		results: map[string]commonModels.LoadResult{
			"documents/lease.pdf": {Success: true, Message: "[OK] Success: 120 words"},
			"documents/bad.pdf":   {Success: false, Message: "[ERROR] Error: corrupt"},
		},
		answer: twoDocAnswer(),
	}}

	out, err := run(t, h, "\nWho pays rent?\n\n  \nQUIT\nnever asked\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"./documents"}, h.rag.loaded)
	require.Len(t, h.rag.asked, 1)
	assert.Equal(t, "Who pays rent?", h.rag.asked[0].Question)
	assert.True(t, h.rag.asked[0].IncludeWeb)

	assert.Contains(t, out, "lease.pdf: [OK] Success: 120 words")
	assert.Contains(t, out, "bad.pdf: [ERROR] Error: corrupt")
	assert.Contains(t, out, "System ready! Loaded 2 documents")
	assert.Contains(t, out, "The tenant pays monthly.")
	assert.Contains(t, out, "Processed in 1.25s")
	assert.Contains(t, out, "Found relevant information in 3 sections from 2 document(s)")
	assert.Contains(t, out, "Document Analysis")
	assert.True(t, h.closed)
}

func TestChat_CustomPathAndLoadError(t *testing.T) {
	h := &harness{rag: &fakeRag{loadErr: errors.New("validation failed: path not found")}}

	out, err := run(t, h, "/tmp/missing\nexit\n", "chat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/missing"}, h.rag.loaded)
	assert.Contains(t, out, "path not found")
	assert.Empty(t, h.rag.asked)
}

func TestSourcesLine(t *testing.T) {
	assert.Equal(t, "", sourcesLine(commonModels.QueryResponse{}))
	assert.Equal(t, "Found relevant information in the document",
		sourcesLine(commonModels.QueryResponse{HasSources: true, TotalSources: 1}))
	assert.Equal(t, "Found relevant information in 3 sections from 2 document(s)", sourcesLine(twoDocAnswer()))

	webOnly := commonModels.QueryResponse{
		HasSources:   true,
		TotalSources: 5,
		Sources: []commonModels.SourceRef{
			{Type: commonModels.SourceWeb, Title: "Rent news", Source: "https://a.example"},
			{Type: commonModels.SourceWeb, Title: "Rent news", Source: "https://a.example/2"},
			{Type: commonModels.SourceWeb, Source: "https://b.example"},
		},
	}
	assert.Equal(t, "Found relevant information in 5 sections from 2 document(s)", sourcesLine(webOnly))
}

func TestAsk_Flags(t *testing.T) {
	h := &harness{rag: &fakeRag{answer: twoDocAnswer()}}

	out, err := run(t, h, "", "--env", "custom.env", "ask", "--no-web", "--max-results", "3", "--task-type", "summarization", "summarize", "the", "lease")
	require.NoError(t, err)

	assert.Equal(t, "custom.env", h.envFile)
	assert.Equal(t, 1, h.opts)
	require.Len(t, h.rag.asked, 1)
	req := h.rag.asked[0]
	assert.Equal(t, "summarize the lease", req.Question)
	assert.False(t, req.IncludeWeb)
	assert.True(t, req.IncludeDocuments)
	assert.Equal(t, 3, req.MaxResults)
	assert.Equal(t, commonModels.Summarization, req.TaskType)
	assert.Contains(t, out, "The tenant pays monthly.")
}

func TestAsk_Rejects(t *testing.T) {
	h := &harness{rag: &fakeRag{}}

	_, err := run(t, h, "", "ask")
	assert.Error(t, err)

	_, err = run(t, h, "", "ask", "--task-type", "poetry", "hi")
	assert.Error(t, err)
	assert.Empty(t, h.rag.asked)
}

func TestIngest(t *testing.T) {
	h := &harness{rag: &fakeRag{results: map[string]commonModels.LoadResult{
		"docs/a.txt": {Success: true, Message: "[OK] Success: 3 words"},
	}}}
	out, err := run(t, h, "", "ingest", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt: [OK] Success: 3 words")

	h = &harness{rag: &fakeRag{results: map[string]commonModels.LoadResult{
		"docs/a.pdf": {Success: false, Message: "[ERROR] Error: corrupt"},
	}}}
	_, err = run(t, h, "", "ingest", "docs")
	assert.ErrorIs(t, err, errNothingLoaded)
}

func TestStatus(t *testing.T) {
	h := &harness{rag: &fakeRag{}}
	out, err := run(t, h, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed chunks:   12")
	assert.Contains(t, out, "gpt-4o-mini")

	out, err = run(t, h, "", "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"indexed_chunks": 12`)
}
