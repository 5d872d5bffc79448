package handlers

import (
	"context"
	"time"

	"github.com/akolanti/insightRAG/internal/api"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/job"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

type JobHandler struct {
	service *job.Service
	logger  *logger_i.Logger
}

func NewJobHandler(jobService *job.Service) *JobHandler {
	h := &JobHandler{service: jobService, logger: logger_i.NewLogger("JobHandler")}
	h.logger.Info("Starting job handler")
	return h
}

func (h *JobHandler) CreateNewJob(ctx context.Context, newJob newJobData) {
	log := h.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", newJob.id)
	log.Info("Creating new job", "ingest", newJob.isDocumentIngest)
	// the chat has to exist before a worker can append the answer to it
	if newJob.isNewChat {
		log.Info("Create new chat", "chatId", newJob.chatId)
		h.initNewChat(ctx, newJob.chatId)
	}
	if h.service.Submit(toJob(newJob)) {
		log.Debug("Dispatcher signalled for a new worker")
	}
}

func (h *JobHandler) GetJobStatus(ctx context.Context, id string) (jobModel.Job, bool) {
	return h.service.JobStore.GetJob(ctx, id)
}

// ValidateChatRequest rejects empty messages, unknown task types, negative limits and chat ids
// the message store has never seen. An empty chat id starts a new conversation.
func (h *JobHandler) ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) bool {
	h.logger.Debug("Validating chat request", "chatId", chatReq.ChatID)
	if chatReq.Message == "" || chatReq.MaxResults < 0 {
		return false
	}
	if chatReq.TaskType != "" {
		if _, err := commonModels.ParseTaskType(chatReq.TaskType); err != nil {
			return false
		}
	}
	if chatReq.ChatID == "" {
		return true
	}
	return h.service.MessageStore.ValidateChatId(ctx, chatReq.ChatID)
}

func toJob(newJob newJobData) jobModel.Job {
	_job := jobModel.Job{
		Id:          newJob.id,
		CreatedTime: time.Now(),
		TraceId:     newJob.traceId,
		Status:      jobModel.JobStatusQueued,
	}

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestPath = newJob.documentSource
		return _job
	}

	_job.JobType = jobModel.JobTypeQuery
	_job.ChatId = newJob.chatId
	_job.CurrentStep = jobModel.UserQueryInit
	_job.JobPayload.Question = newJob.message
	_job.JobPayload.TaskType = newJob.taskType
	_job.JobPayload.MaxResults = newJob.maxResults
	_job.JobPayload.IncludeWeb = newJob.includeWeb
	_job.JobPayload.IncludeDocuments = newJob.includeDocuments
	return _job
}

func (h *JobHandler) initNewChat(ctx context.Context, chatId string) {
	if err := h.service.MessageStore.InitNewChat(ctx, chatId); err != nil {
		h.logger.Error("Error initiating new chat", "chatId", chatId, "err", err)
	}
}
