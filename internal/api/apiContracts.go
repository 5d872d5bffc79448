package api

import (
	"time"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question       string                   `json:"question"`
	Answer         string                   `json:"answer"`
	TaskType       string                   `json:"task_type" example:"hybrid_search"`
	TaskLabel      string                   `json:"task_label" example:"Document + Web Search"`
	Confidence     float64                  `json:"confidence" example:"85"`
	ProcessingTime string                   `json:"processing_time" example:"1.42s"`
	Sources        []commonModels.SourceRef `json:"sources"`
}

type IngestResponse struct {
	Path    string                             `json:"path"`
	Results map[string]commonModels.LoadResult `json:"results"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	ChatId    string `json:"chat_id,omitempty"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type ChatRequest struct {
	Message          string `json:"message" validate:"required"`
	ChatID           string `json:"chatID,omitempty"`
	IncludeWeb       *bool  `json:"include_web,omitempty"`
	IncludeDocuments *bool  `json:"include_documents,omitempty"`
	MaxResults       int    `json:"max_results,omitempty" example:"5"`
	TaskType         string `json:"task_type,omitempty" example:"document_query"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
