package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit InternalStatus = "Init"
	ClassifyCall  InternalStatus = "Classify"
	RAGCall       InternalStatus = "RAG"
	LLMCall       InternalStatus = "LLM"
	VectorDBCall  InternalStatus = "VectorDB"
	WebSearchCall InternalStatus = "WebSearch"
	RedisCall     InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question         string `json:"question,omitempty"`
	TaskType         string `json:"task_type,omitempty"`
	MaxResults       int    `json:"max_results,omitempty"`
	IncludeWeb       bool   `json:"include_web"`
	IncludeDocuments bool   `json:"include_documents"`

	Answer         string                   `json:"answer,omitempty"`
	Confidence     float64                  `json:"confidence,omitempty"`
	ProcessingTime string                   `json:"processing_time,omitempty"`
	Sources        []commonModels.SourceRef `json:"sources,omitempty"`

	IngestFileName string                             `json:"ingest_file_name,omitempty"`
	IngestPath     string                             `json:"ingest_path,omitempty"`
	IngestResults  map[string]commonModels.LoadResult `json:"ingest_results,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, JobPayload JobPayload) error
	InitNewChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) (error, []string)
}
