package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/insightRAG/internal/adapter"
	"github.com/akolanti/insightRAG/internal/adapter/utils"
	"github.com/akolanti/insightRAG/internal/api"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/rag"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

const maxUploadSize = 32 << 20 //32mb

type newJobData struct {
	id               string
	chatId           string
	message          string
	isNewChat        bool
	traceId          string
	taskType         string
	maxResults       int
	includeWeb       bool
	includeDocuments bool
	isDocumentIngest bool
	documentName     string
	documentSource   string
}

type RequestHandler struct {
	jobs       *JobHandler
	ragService rag.Service
	uploadDir  string
	logger     *logger_i.Logger
}

func NewRequestHandler(jobs *JobHandler, ragService rag.Service, uploadDir string) *RequestHandler {
	return &RequestHandler{
		jobs:       jobs,
		ragService: ragService,
		uploadDir:  uploadDir,
		logger:     logger_i.NewLogger("RequestHandler"),
	}
}

func (h *RequestHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question
// @Description  Queues a question for the RAG pipeline and returns a job ID to poll. Web and document retrieval default to on.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ChatRequest      true  "Question, optional chat ID and retrieval options"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func (h *RequestHandler) ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !h.validateContext(request) {
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			h.logger.Error("Couldn't close the chat request body", "err", err)
		}
	}(request.Body)

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !h.jobs.ValidateChatRequest(request.Context(), requestData) {
		h.logger.Warn("Bad chat request", "err", err, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}
	h.processNewJobData(w, request, chatJobData(requestData))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a question or ingestion job.
// @Tags         Job Status
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func (h *RequestHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	h.logger.Debug("Get status request", "path", r.URL.Path)

	result, isFound := h.validateId(r, idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result), h.logger)
}

// SystemHandler godoc
// @Summary      System status
// @Description  Loaded documents, indexed chunks, readiness and the models in use.
// @Tags         System
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  commonModels.SystemStatus
// @Router       /system [get]
func (h *RequestHandler) SystemHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	writeJsonResponse(w, http.StatusOK, h.ragService.Status(r.Context()), h.logger)
}

// PostIngestHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stages it in the upload directory and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "A PDF, DOCX, PPTX, XLSX, ODT, RTF, TXT or MD file"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - missing fields, unsupported type or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - storage or write error"
// @Router       /ingest [post]
func (h *RequestHandler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	if err := os.MkdirAll(h.uploadDir, 0750); err != nil {
		h.logger.Error("Couldn't create upload directory", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	// base name only, a client supplied path must not escape the upload directory
	original := filepath.Base(fileMetadata.Filename)
	if !h.ragService.SupportsFile(original) {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Unsupported file type")
		return
	}

	targetPath, err := saveUpload(h.uploadDir, original, fileReader)
	if err != nil {
		h.logger.Error("Couldn't store upload", "name", original, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	h.processNewJobData(w, r, newJobData{
		isDocumentIngest: true,
		documentName:     docName,
		documentSource:   targetPath,
	})
}

// saveUpload stores the file as <content hash>-<name>. An identical earlier upload is
// left untouched, so its path and mtime and therefore its document id stay the same.
func saveUpload(dir, name string, src io.Reader) (string, error) {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hash), src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	target := filepath.Join(dir, hex.EncodeToString(hash.Sum(nil))[:16]+"-"+name)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

func chatJobData(req api.ChatRequest) newJobData {
	return newJobData{
		chatId:           req.ChatID,
		message:          req.Message,
		taskType:         req.TaskType,
		maxResults:       req.MaxResults,
		includeWeb:       boolOrDefault(req.IncludeWeb, true),
		includeDocuments: boolOrDefault(req.IncludeDocuments, true),
	}
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func traceOf(r *http.Request) string {
	if trace, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}
