package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag/llm"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidPath      = fmt.Errorf("%w: path not found", ErrValidation)
	ErrUnsupportedFile  = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrNoSupportedFiles = fmt.Errorf("%w: no supported files found in directory", ErrValidation)
	ErrEmptyQuestion    = fmt.Errorf("%w: question is empty", ErrValidation)
)

// Service is the contract the CLI, the worker pool and the MCP server use.
// The struct behind it stays private so callers never reach the stores directly.
type Service interface {
	LoadDocuments(ctx context.Context, path string) (map[string]commonModels.LoadResult, error)
	AskQuestion(ctx context.Context, req commonModels.QueryRequest) commonModels.QueryResponse
	Status(ctx context.Context) commonModels.SystemStatus
	SupportsFile(path string) bool
	SearchDocuments(ctx context.Context, query string, maxResults int) []commonModels.SearchResult
	SearchWeb(ctx context.Context, query string, maxResults int) []commonModels.SearchResult

	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, path string) (commonModels.Document, error)
	SupportsFile(path string) bool
	SupportedExtensions() []string
}

type VectorStore interface {
	AddDocument(ctx context.Context, doc commonModels.Document) (vectorDB.AddStats, error)
	Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult
	Count(ctx context.Context) (int, error)
	EmbeddingModel() string
}

type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult
}

// Dependencies are built once at startup. Web may be nil, which disables web retrieval.
type Dependencies struct {
	Processor DocumentProcessor
	Store     VectorStore
	Web       WebSearcher
	LLM       llm.Provider
	TopK      int
}

type service struct {
	processor   DocumentProcessor
	store       VectorStore
	web         WebSearcher
	llmProvider llm.Provider
	topK        int

	mu        sync.RWMutex
	documents map[string]commonModels.Document

	logger *logger_i.Logger
}

func NewService(deps Dependencies) Service {
	topK := deps.TopK
	if topK <= 0 {
		topK = config.DefaultTopKResults
	}
	return &service{
		processor:   deps.Processor,
		store:       deps.Store,
		web:         deps.Web,
		llmProvider: deps.LLM,
		topK:        topK,
		documents:   make(map[string]commonModels.Document),
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) AskQuestion(ctx context.Context, req commonModels.QueryRequest) (resp commonModels.QueryResponse) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic while answering", "panic", r)
			resp = errorResponse(fmt.Errorf("%v", r), start)
		}
	}()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return errorResponse(ErrEmptyQuestion, start)
	}
	req.Question = question
	if req.MaxResults <= 0 {
		req.MaxResults = s.topK
	}

	taskType := s.executeClassifyStep(req)
	req.TaskType = taskType
	log.Info("Answering question", "taskType", taskType, "includeWeb", req.IncludeWeb, "includeDocuments", req.IncludeDocuments)

	var all []commonModels.SearchResult
	if req.IncludeDocuments && taskType != commonModels.WebSearch {
		all = append(all, s.executeDocumentSearchStep(ctx, req)...)
	}
	if req.IncludeWeb && (taskType == commonModels.WebSearch || taskType == commonModels.HybridSearch) {
		all = append(all, s.executeWebSearchStep(ctx, req)...)
	}

	contextBlock := BuildContext(truncate(all, req.MaxResults))
	answer := s.executeLLMStep(ctx, req, contextBlock)

	metrics.IncrementQuestionsAnswered(string(taskType))
	return commonModels.QueryResponse{
		Answer:         answer,
		TaskType:       string(taskType),
		ProcessingTime: time.Since(start),
		Confidence:     Confidence(all),
		Sources:        sourceRefs(truncate(all, config.MaxSourcesInResponse)),
		HasSources:     len(all) > 0,
		TotalSources:   len(all),
	}
}

func (s *service) SearchDocuments(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	if maxResults <= 0 {
		maxResults = s.topK
	}
	return s.store.Search(ctx, query, maxResults)
}

func (s *service) SearchWeb(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	if s.web == nil {
		return []commonModels.SearchResult{}
	}
	if maxResults <= 0 {
		maxResults = s.topK
	}
	return s.web.Search(ctx, query, maxResults)
}

func (s *service) Status(ctx context.Context) commonModels.SystemStatus {
	s.mu.RLock()
	loaded := len(s.documents)
	s.mu.RUnlock()

	chunks, err := s.store.Count(ctx)
	if err != nil {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("Could not count indexed chunks", "error", err)
	}

	status := commonModels.SystemStatus{
		LoadedDocuments:    loaded,
		IndexedChunks:      chunks,
		SystemReady:        loaded > 0,
		SupportedFileTypes: s.processor.SupportedExtensions(),
		EmbeddingModel:     s.store.EmbeddingModel(),
	}
	if s.llmProvider != nil {
		status.Model = s.llmProvider.Model()
	}
	return status
}

func (s *service) SupportsFile(path string) bool {
	return s.processor.SupportsFile(path)
}

// ProcessRequest is the worker entry point for chat jobs.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QuestionTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall
	req := queryFromPayload(jobt.JobPayload, messageHistory)
	if req.TaskType == "" && jobt.JobPayload.TaskType != "" {
		inMethodLogger.Warn("Ignoring unknown task type override", "taskType", jobt.JobPayload.TaskType)
	}

	resp := s.AskQuestion(processContext, req)
	if resp.TaskType == commonModels.ErrorTaskType {
		return s.jobError(jobt, errors.New(resp.Answer), "QUESTION_FAILURE", http.StatusInternalServerError, true)
	}
	return returnOutput(jobt, resp)
}

// IngestDocument is the worker entry point for uploads. The job fails only when nothing could be loaded.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestProcessing
	results, err := s.LoadDocuments(ctx, job.JobPayload.IngestPath)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return s.jobError(job, err, "INGESTION_REJECTED", http.StatusBadRequest, false)
		}
		return s.jobError(job, err, "INGESTION_FAILURE", http.StatusInternalServerError, true)
	}
	job.JobPayload.IngestResults = results

	for _, r := range results {
		if r.Success {
			job.CurrentStep = jobModel.Complete
			return job
		}
	}
	return s.jobError(job, errors.New("no document could be processed"), "INGESTION_FAILURE", http.StatusUnprocessableEntity, false)
}
