package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/insightRAG/internal/adapter"
	"github.com/akolanti/insightRAG/internal/adapter/utils"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}, logger *logger_i.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// the status line is already out, nothing left but logging
		logger.Error("Error encoding response", "err", err)
	}
}

func (h *RequestHandler) validateId(r *http.Request, id string) (jobModel.Job, bool) {
	if id == "" {
		h.logger.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return h.jobs.GetJobStatus(r.Context(), id)
}

func (h *RequestHandler) validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.logger.Warn("Request context done", "err", err, "remote", r.RemoteAddr, "traceId", traceOf(r))
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode), logger_i.NewLogger("ResponseWriter"))
}

// processNewJobData fills in ids and the trace, queues the job and answers 202.
func (h *RequestHandler) processNewJobData(w http.ResponseWriter, request *http.Request, newJob newJobData) {
	if !newJob.isDocumentIngest && newJob.chatId == "" {
		newJob.chatId = utils.GetNewUUID()
		newJob.isNewChat = true
		h.logger.Debug("New chat request", "chatId", newJob.chatId)
	}
	newJob.id = utils.GetNewUUID()
	newJob.traceId = traceOf(request)

	h.jobs.CreateNewJob(request.Context(), newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, newJob.chatId), h.logger)
}
