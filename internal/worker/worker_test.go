package worker

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRagService tracks which jobs reach the service.
type MockRagService struct {
	ProcessedCount int32
	OnProcess      func(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job
	OnIngest       func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) LoadDocuments(ctx context.Context, path string) (map[string]commonModels.LoadResult, error) {
	return nil, nil
}

func (m *MockRagService) AskQuestion(ctx context.Context, req commonModels.QueryRequest) commonModels.QueryResponse {
	return commonModels.QueryResponse{}
}

func (m *MockRagService) Status(ctx context.Context) commonModels.SystemStatus {
	return commonModels.SystemStatus{}
}

func (m *MockRagService) SupportsFile(path string) bool { return true }

func (m *MockRagService) SearchDocuments(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}

func (m *MockRagService) SearchWeb(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	return nil
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(ctx, j, hist)
	}
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, j)
	}
	return j
}

type MockJobStore struct {
	mu        sync.Mutex
	saved     []jobModel.Job
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

// MockMessageStore handles chat history
type MockMessageStore struct {
	OnGetHistory func(ctx context.Context, chatId string) (error, []string)
	OnSaveChat   func(ctx context.Context, chatId string, payload jobModel.JobPayload) error
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool {
	return true
}

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error {
	return nil
}

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) (error, []string) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id)
	}
	return nil, []string{}
}

func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	if m.OnSaveChat != nil {
		return m.OnSaveChat(ctx, id, p)
	}
	return nil
}

func newTestPool(t *testing.T, rag *MockRagService, jobs *MockJobStore, messages *MockMessageStore) (*Pool, *job.Service, chan bool, *sync.WaitGroup) {
	t.Helper()
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobs,
		MessageStore:      messages,
	})
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}
	return NewPool(jobSvc, rag, stopChan, wg), jobSvc, stopChan, wg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerPool_Flow(t *testing.T) {
	mockRag := &MockRagService{}
	pool, jobSvc, stopChan, wg := newTestPool(t, mockRag, &MockJobStore{}, &MockMessageStore{})
	pool.Start()

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return pool.WorkerCount() == 2 })
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		waitFor(t, func() bool { return atomic.LoadInt32(&mockRag.ProcessedCount) == 1 })
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		assert.Equal(t, int64(0), pool.WorkerCount())
	})
}

func TestWorkerPool_NeverExceedsMax(t *testing.T) {
	pool, jobSvc, stopChan, wg := newTestPool(t, &MockRagService{}, &MockJobStore{}, &MockMessageStore{})
	pool.maxWorkerCount = 3
	pool.Start()

	for i := 0; i < 8; i++ {
		jobSvc.DispatcherChannel <- true
	}
	waitFor(t, func() bool { return len(jobSvc.DispatcherChannel) == 0 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(3), pool.WorkerCount())

	close(stopChan)
	wg.Wait()
}

func TestWorker_IdleTimeout(t *testing.T) {
	pool, _, stopChan, wg := newTestPool(t, &MockRagService{}, &MockJobStore{}, &MockMessageStore{})
	pool.idleTimeout = 30 * time.Millisecond
	pool.minWorkerCount = 1

	pool.createWorker()
	pool.createWorker()
	pool.createWorker()

	// idle workers retire down to the minimum and no further
	waitFor(t, func() bool { return pool.WorkerCount() == 1 })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), pool.WorkerCount())

	close(stopChan)
	wg.Wait()
	assert.Equal(t, int64(0), pool.WorkerCount())
}

func TestExecuteJob_IngestResultIsSaved(t *testing.T) {
	store := &MockJobStore{}
	rag := &MockRagService{OnIngest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
		j.JobPayload.IngestResults = map[string]commonModels.LoadResult{
			"docs/a.txt": {Path: "docs/a.txt", Success: true, Message: "[OK] Success: 3 words"},
		}
		j.CurrentStep = jobModel.Complete
		return j
	}}
	pool, _, _, _ := newTestPool(t, rag, store, &MockMessageStore{})

	pool.executeJob(jobModel.Job{Id: "ingest-1", JobType: jobModel.JobTypeIngest})

	saved, ok := store.GetJob(context.Background(), "ingest-1")
	require.True(t, ok)
	assert.Equal(t, jobModel.JobStatusComplete, saved.Status)
	assert.Equal(t, jobModel.Complete, saved.CurrentStep)
	assert.True(t, saved.JobPayload.IngestResults["docs/a.txt"].Success)
	assert.False(t, saved.EndTime.IsZero())
}

func TestExecuteJob_QueryUsesHistoryAndSavesChat(t *testing.T) {
	var savedChat jobModel.JobPayload
	messages := &MockMessageStore{
		OnGetHistory: func(ctx context.Context, chatId string) (error, []string) {
			return nil, []string{"Question: q1\nAnswer: a1"}
		},
		OnSaveChat: func(ctx context.Context, chatId string, payload jobModel.JobPayload) error {
			savedChat = payload
			return nil
		},
	}
	rag := &MockRagService{OnProcess: func(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
		require.Len(t, hist, 1)
		j.JobPayload.Answer = "a2"
		return j
	}}
	store := &MockJobStore{}
	pool, _, _, _ := newTestPool(t, rag, store, messages)

	pool.executeJob(jobModel.Job{Id: "q-1", ChatId: "chat-1", JobType: jobModel.JobTypeQuery, JobPayload: jobModel.JobPayload{Question: "q2"}})

	assert.Equal(t, "a2", savedChat.Answer)
	saved, _ := store.GetJob(context.Background(), "q-1")
	assert.Equal(t, jobModel.JobStatusComplete, saved.Status)
}

func TestExecuteJob_ErrorKeepsErrorStatus(t *testing.T) {
	saveChatCalled := false
	messages := &MockMessageStore{OnSaveChat: func(ctx context.Context, chatId string, payload jobModel.JobPayload) error {
		saveChatCalled = true
		return nil
	}}
	rag := &MockRagService{OnProcess: func(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: http.StatusInternalServerError, Message: "llm down", Retry: true}
		return j
	}}
	store := &MockJobStore{}
	pool, _, _, _ := newTestPool(t, rag, store, messages)

	pool.executeJob(jobModel.Job{Id: "q-err", JobType: jobModel.JobTypeQuery})

	saved, _ := store.GetJob(context.Background(), "q-err")
	assert.Equal(t, jobModel.JobStatusError, saved.Status)
	assert.Equal(t, "llm down", saved.Error.Message)
	assert.False(t, saveChatCalled)
}

func TestExecuteJob_PanicMarksJobFailed(t *testing.T) {
	rag := &MockRagService{OnProcess: func(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
		panic("boom")
	}}
	store := &MockJobStore{}
	pool, _, _, _ := newTestPool(t, rag, store, &MockMessageStore{})

	assert.NotPanics(t, func() { pool.executeJob(jobModel.Job{Id: "q-panic", JobType: jobModel.JobTypeQuery}) })

	saved, _ := store.GetJob(context.Background(), "q-panic")
	assert.Equal(t, jobModel.JobStatusError, saved.Status)
	assert.Equal(t, jobModel.Error, saved.CurrentStep)
}

func TestSubmit_SignalsDispatcherForIngest(t *testing.T) {
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 1),
	})

	assert.False(t, jobSvc.Submit(jobModel.Job{Id: "q", JobType: jobModel.JobTypeQuery}))
	assert.True(t, jobSvc.Submit(jobModel.Job{Id: "i", JobType: jobModel.JobTypeIngest}))
	// dispatcher channel is full, a second signal is dropped instead of blocking
	assert.False(t, jobSvc.Submit(jobModel.Job{Id: "i2", JobType: jobModel.JobTypeIngest}))
	assert.Len(t, jobSvc.JobChannel, 3)
}
