package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

// InMemoryJobStore is the fallback when redis is unavailable. Jobs expire after
// the same TTL the redis store applies; expired entries are swept on write.
type InMemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[string]storedJob
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

type storedJob struct {
	job     jobModel.Job
	expires time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]storedJob),
		ttl:    config.RedisJobStoreTTL,
		now:    time.Now,
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.jobs[job.Id] = storedJob{job: job, expires: now.Add(s.ttl)}
	s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.jobs[jobId]
	if !found || s.now().After(entry.expires) {
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (s *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

func (s *InMemoryJobStore) sweep(now time.Time) {
	for id, entry := range s.jobs {
		if now.After(entry.expires) {
			delete(s.jobs, id)
		}
	}
}
