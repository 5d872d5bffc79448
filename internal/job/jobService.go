package job

import (
	"sync/atomic"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/metrics"
)

// Service is the queue between the HTTP handlers and the worker pool, plus the stores both sides share.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	if cfg.JobChannel == nil {
		cfg.JobChannel = make(chan jobModel.Job, config.BufferLimit)
	}
	if cfg.DispatcherChannel == nil {
		cfg.DispatcherChannel = make(chan bool, 1)
	}
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
	}
}

// Submit queues the job and reports whether the dispatcher was asked for another worker.
// The send blocks when the buffer is full so a burst of requests cannot outrun the pool.
func (s *Service) Submit(job jobModel.Job) bool {
	metrics.IncrementJobsInQueue()
	s.JobChannel <- job

	// a new worker every RequestsPerNewWorkerCount requests, or for every ingest since
	// those run much longer than a question. Idle workers retire on their own.
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount != 0 && job.JobType != jobModel.JobTypeIngest {
		return false
	}
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
		return true
	default:
		// a signal is already pending
		return false
	}
}
