package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/insightRAG/internal/api"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/data/store"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/job"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRag struct {
	status commonModels.SystemStatus
}

func (m *mockRag) LoadDocuments(ctx context.Context, path string) (map[string]commonModels.LoadResult, error) {
	return nil, nil
}
func (m *mockRag) AskQuestion(ctx context.Context, req commonModels.QueryRequest) commonModels.QueryResponse {
	return commonModels.QueryResponse{}
}
func (m *mockRag) Status(ctx context.Context) commonModels.SystemStatus { return m.status }
func (m *mockRag) SupportsFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".txt"
}
func (m *mockRag) SearchDocuments(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}
func (m *mockRag) SearchWeb(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}
func (m *mockRag) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	return j
}
func (m *mockRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job { return j }

type fixture struct {
	handler   *RequestHandler
	jobs      *job.Service
	messages  *store.InMemoryMessageStore
	jobStore  *store.InMemoryJobStore
	router    *chi.Mux
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		messages:  store.InitMessageStore(),
		jobStore:  store.InitInMemoryJobStore(),
		uploadDir: filepath.Join(t.TempDir(), "uploads"),
	}
	f.jobs = job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          f.jobStore,
		MessageStore:      f.messages,
	})
	rag := &mockRag{status: commonModels.SystemStatus{LoadedDocuments: 2, IndexedChunks: 9, SystemReady: true, Model: "gpt-4o-mini"}}
	f.handler = NewRequestHandler(NewJobHandler(f.jobs), rag, f.uploadDir)

	f.router = chi.NewRouter()
	f.router.Post("/chat", f.handler.ChatHandler)
	f.router.Get("/status/{id}", f.handler.GetStatusHandler)
	f.router.Post("/ingest", f.handler.PostIngestHandler)
	f.router.Get("/system", f.handler.SystemHandler)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "trace-1"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) nextJob(t *testing.T) jobModel.Job {
	t.Helper()
	select {
	case j := <-f.jobs.JobChannel:
		return j
	case <-time.After(time.Second):
		t.Fatal("no job queued")
		return jobModel.Job{}
	}
}

func TestChatHandler_QueuesJobWithDefaults(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"What is the rent?"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var res api.InitJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.NotEmpty(t, res.Id)
	assert.NotEmpty(t, res.ChatId)
	assert.Equal(t, "status/"+res.Id, res.StatusURL)

	queued := f.nextJob(t)
	assert.Equal(t, res.Id, queued.Id)
	assert.Equal(t, jobModel.JobTypeQuery, queued.JobType)
	assert.Equal(t, "trace-1", queued.TraceId)
	assert.Equal(t, "What is the rent?", queued.JobPayload.Question)
	assert.True(t, queued.JobPayload.IncludeWeb)
	assert.True(t, queued.JobPayload.IncludeDocuments)
	assert.True(t, f.messages.ValidateChatId(context.Background(), res.ChatId))
}

func TestChatHandler_Options(t *testing.T) {
	f := newFixture(t)

	body := `{"message":"latest news","include_documents":false,"max_results":3,"task_type":"web_search"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	queued := f.nextJob(t)
	assert.True(t, queued.JobPayload.IncludeWeb)
	assert.False(t, queued.JobPayload.IncludeDocuments)
	assert.Equal(t, 3, queued.JobPayload.MaxResults)
	assert.Equal(t, "web_search", queued.JobPayload.TaskType)
}

func TestChatHandler_Rejects(t *testing.T) {
	f := newFixture(t)
	bodies := map[string]string{
		"malformed json":    `{"message":`,
		"empty message":     `{"message":""}`,
		"unknown chat id":   `{"message":"hi","chatID":"never-seen"}`,
		"unknown task type": `{"message":"hi","task_type":"poetry"}`,
		"negative limit":    `{"message":"hi","max_results":-1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := f.do(httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Len(t, f.jobs.JobChannel, 0)
}

func TestChatHandler_ContinuesExistingChat(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.messages.InitNewChat(context.Background(), "chat-7"))

	rec := f.do(httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"and the deposit?","chatID":"chat-7"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "chat-7", f.nextJob(t).ChatId)
}

func TestGetStatusHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/status/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var notFound api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notFound))
	require.NotNil(t, notFound.Error)
	assert.Equal(t, "Job not found", notFound.Error.Message)

	require.NoError(t, f.jobStore.SaveJob(context.Background(), jobModel.Job{
		Id:      "job-1",
		ChatId:  "chat-1",
		JobType: jobModel.JobTypeQuery,
		Status:  jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{
			Question:       "q",
			Answer:         "a",
			TaskType:       "document_query",
			Confidence:     85,
			ProcessingTime: "1.20s",
			Sources:        []commonModels.SourceRef{{Type: commonModels.SourceDocument, Title: "Lease", Source: "lease.pdf", Score: 0.8}},
		},
	}))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/status/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Nil(t, res.Error)
	assert.Equal(t, "COMPLETE", res.Result.Status)
	require.NotNil(t, res.Result.RAGExternalResponse)
	assert.Equal(t, "Document Analysis", res.Result.RAGExternalResponse.TaskLabel)
	assert.Equal(t, "lease.pdf", res.Result.RAGExternalResponse.Sources[0].Source)
}

func TestSystemHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/system", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status commonModels.SystemStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, 2, status.LoadedDocuments)
	assert.Equal(t, 9, status.IndexedChunks)
	assert.True(t, status.SystemReady)
}

func multipartUpload(t *testing.T, docName, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if docName != "" {
		require.NoError(t, mw.WriteField("document_name", docName))
	}
	part, err := mw.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPostIngestHandler_StagesUpload(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartUpload(t, "Lease", "../../lease.txt", "The tenant pays monthly."))
	require.Equal(t, http.StatusAccepted, rec.Code)

	queued := f.nextJob(t)
	assert.Equal(t, jobModel.JobTypeIngest, queued.JobType)
	assert.Equal(t, "Lease", queued.JobPayload.IngestFileName)
	assert.Equal(t, f.uploadDir, filepath.Dir(queued.JobPayload.IngestPath))
	assert.True(t, strings.HasSuffix(queued.JobPayload.IngestPath, "-lease.txt"))

	raw, err := os.ReadFile(queued.JobPayload.IngestPath)
	require.NoError(t, err)
	assert.Equal(t, "The tenant pays monthly.", string(raw))
	// ingest jobs always ask for a worker
	assert.Len(t, f.jobs.DispatcherChannel, 1)
}

func TestPostIngestHandler_ReuploadKeepsPath(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusAccepted, f.do(multipartUpload(t, "Lease", "lease.txt", "The tenant pays monthly.")).Code)
	first := f.nextJob(t).JobPayload.IngestPath
	info, err := os.Stat(first)
	require.NoError(t, err)

	require.Equal(t, http.StatusAccepted, f.do(multipartUpload(t, "Lease", "lease.txt", "The tenant pays monthly.")).Code)
	second := f.nextJob(t).JobPayload.IngestPath
	assert.Equal(t, first, second)
	again, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())

	require.Equal(t, http.StatusAccepted, f.do(multipartUpload(t, "Lease", "lease.txt", "The tenant pays weekly.")).Code)
	assert.NotEqual(t, first, f.nextJob(t).JobPayload.IngestPath)

	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPostIngestHandler_Rejects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartUpload(t, "", "lease.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(multipartUpload(t, "Photo", "photo.png", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader("not multipart")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, f.jobs.JobChannel, 0)
}
