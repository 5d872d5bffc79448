package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	jobmodel "github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

func (p *Pool) executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job))
	defer cancel()
	log := p.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in job", "panic", r)
			job.Status = jobmodel.JobStatusError
			job.CurrentStep = jobmodel.Error
			job.Error = jobmodel.JobError{Code: http.StatusInternalServerError, Message: "internal error", Retry: true}
			job.EndTime = time.Now()
			p.saveJobState(ctx, job, jobmodel.JobStatusError, log)
		}
	}()

	p.saveJobState(ctx, job, jobmodel.JobStatusRunning, log)

	if job.JobType == jobmodel.JobTypeIngest {
		job.CurrentStep = jobmodel.IngestProcessing
		job = p.ingestDocument(ctx, job)
	} else {
		job.CurrentStep = jobmodel.RedisCall
		job = p.processQuery(ctx, job, log)
		if job.Status != jobmodel.JobStatusError {
			if err := p.jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
				log.Error("Failed to save chat history", "err", err)
			}
		}
	}

	job.EndTime = time.Now()
	final := jobmodel.JobStatusComplete
	if job.Status == jobmodel.JobStatusError {
		final = jobmodel.JobStatusError
	}
	p.saveJobState(ctx, job, final, log)
}

func jobTimeout(job jobmodel.Job) time.Duration {
	if job.JobType == jobmodel.JobTypeIngest {
		return config.IngestFileTimeout
	}
	return config.QuestionTimeout
}

// removeWorker runs after the slot was released from currentWorkerCount.
func (p *Pool) removeWorker(reason string) {
	p.workerWaitGroup.Done()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
	metrics.DecrementActiveWorkerCount()
}

func (p *Pool) ingestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	return p.ragService.IngestDocument(ctx, job)
}

func (p *Pool) processQuery(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	err, messageHistory := p.jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		log.Error("Failed to get message history", "err", err)
	}
	return p.ragService.ProcessRequest(ctx, job, messageHistory)
}

func (p *Pool) saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus, log *logger_i.Logger) {
	job.Status = jobStatus
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job status", "err", err)
	}
}
