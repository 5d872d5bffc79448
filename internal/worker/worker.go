package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/job"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

// Pool grows on dispatcher signals up to MaxWorkerCount and shrinks back when workers sit idle.
type Pool struct {
	jobService *job.Service
	ragService rag.Service

	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     int64
	maxWorkerCount     int64
	idleTimeout        time.Duration

	logger *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) *Pool {
	return &Pool{
		jobService:        jobService,
		ragService:        ragService,
		stopWorkerChannel: stopWorkerChan,
		workerWaitGroup:   waitGroup,
		minWorkerCount:    config.MinWorkerCount,
		maxWorkerCount:    config.MaxWorkerCount,
		idleTimeout:       config.IdleWorkerTimeout,
		logger:            logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
}

// WorkerCount is the number of live workers.
func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.stopWorkerChannel:
			return
		case _, ok := <-p.jobService.DispatcherChannel:
			if !ok {
				return
			}
			if p.WorkerCount() < p.maxWorkerCount {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
	p.logger.Debug("Created new worker")
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			p.executeJob(currentJob)
			metrics.DecrementJobsInQueue()
			idle.Reset(p.idleTimeout)

		case <-p.stopWorkerChannel:
			atomic.AddInt64(&p.currentWorkerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.retireIdle() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// retireIdle claims a slot above the minimum so two idle workers cannot both drop the pool below it.
func (p *Pool) retireIdle() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			return true
		}
	}
}
