package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag/classifier"
)

const noContext = "No relevant context found."

func returnOutput(job jobModel.Job, resp commonModels.QueryResponse) jobModel.Job {
	job.JobPayload.Answer = resp.Answer
	job.JobPayload.TaskType = resp.TaskType
	job.JobPayload.Confidence = resp.Confidence
	job.JobPayload.ProcessingTime = resp.FormattedTime()
	job.JobPayload.Sources = resp.Sources
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, code int, canRetry bool) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: err.Error(),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func queryFromPayload(p jobModel.JobPayload, history []string) commonModels.QueryRequest {
	req := commonModels.QueryRequest{
		Question:         p.Question,
		MaxResults:       p.MaxResults,
		IncludeWeb:       p.IncludeWeb,
		IncludeDocuments: p.IncludeDocuments,
		History:          history,
	}
	if t, err := commonModels.ParseTaskType(p.TaskType); err == nil {
		req.TaskType = t
	}
	return req
}

func errorResponse(err error, start time.Time) commonModels.QueryResponse {
	return commonModels.QueryResponse{
		Answer:         fmt.Sprintf("Error processing question: %v", err),
		TaskType:       commonModels.ErrorTaskType,
		ProcessingTime: time.Since(start),
		Confidence:     0,
		Sources:        []commonModels.SourceRef{},
	}
}

func (s *service) executeClassifyStep(req commonModels.QueryRequest) commonModels.TaskType {
	if req.TaskType.Valid() {
		return req.TaskType
	}
	return classifier.Classify(req.Question)
}

func (s *service) executeDocumentSearchStep(ctx context.Context, req commonModels.QueryRequest) []commonModels.SearchResult {
	return s.store.Search(ctx, req.Question, req.MaxResults)
}

func (s *service) executeWebSearchStep(ctx context.Context, req commonModels.QueryRequest) []commonModels.SearchResult {
	if s.web == nil {
		return nil
	}
	return s.web.Search(ctx, req.Question, req.MaxResults)
}

func (s *service) executeLLMStep(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	llmCtx, cancel := context.WithTimeout(ctx, config.LLMGenerateTimeout)
	defer cancel()
	return s.llmProvider.GenerateResponse(llmCtx, req, contextBlock)
}

// BuildContext renders results as "[DOCUMENT] title\ncontent\n" entries joined by newlines.
func BuildContext(results []commonModels.SearchResult) string {
	if len(results) == 0 {
		return noContext
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[%s] %s\n%s\n", strings.ToUpper(string(r.SourceType)), r.Title(), r.Content))
	}
	return strings.Join(parts, "\n")
}

// Confidence is a placeholder until answers are scored: any retrieved context counts as 85.
func Confidence(results []commonModels.SearchResult) float64 {
	if len(results) > 0 {
		return config.AnswerConfidence
	}
	return 0
}

func truncate(results []commonModels.SearchResult, n int) []commonModels.SearchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

func sourceRefs(results []commonModels.SearchResult) []commonModels.SourceRef {
	refs := make([]commonModels.SourceRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, commonModels.SourceRef{
			Type:   r.SourceType,
			Title:  r.Title(),
			Source: r.Source,
			Score:  r.Score,
		})
	}
	return refs
}
