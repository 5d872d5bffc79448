package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/insightRAG/internal/api"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
)

func ToInitJobResponse(id, chatId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		ChatId:    chatId,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{Status: string(job.Status)}
	if job.JobType == jobModel.JobTypeIngest {
		result.IngestResponse = ToIngestResponse(job.JobPayload)
	} else {
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}
	sources := ragData.Sources
	if sources == nil {
		sources = []commonModels.SourceRef{}
	}
	return &api.RAGResponse{
		Question:       ragData.Question,
		Answer:         ragData.Answer,
		TaskType:       ragData.TaskType,
		TaskLabel:      commonModels.TaskLabel(ragData.TaskType),
		Confidence:     ragData.Confidence,
		ProcessingTime: ragData.ProcessingTime,
		Sources:        sources,
	}
}

func ToIngestResponse(p jobModel.JobPayload) *api.IngestResponse {
	if len(p.IngestResults) == 0 {
		return nil
	}
	return &api.IngestResponse{Path: p.IngestFileName, Results: p.IngestResults}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
