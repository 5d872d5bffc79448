// @title           insightRAG API
// @version         1.0
// @description     Asynchronous question answering over local documents and the web, plus document ingestion.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/insightRAG/internal/app"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/data/redisStore"
	"github.com/akolanti/insightRAG/internal/data/store"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/internal/handlers"
	"github.com/akolanti/insightRAG/internal/job"
	"github.com/akolanti/insightRAG/internal/middleware"
	"github.com/akolanti/insightRAG/internal/server"
	"github.com/akolanti/insightRAG/internal/worker"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env", ".env", "path to the .env file")
	listenAddr := flag.String("listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.Parse()

	settings, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *listenAddr != "" {
		settings.ListenAddr = *listenAddr
	}

	logCloser, err := app.InitLogging(settings, false)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger := logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobStore, messageStore, searchCache, err := openStores(serviceContext, settings, logger)
	if err != nil {
		return err
	}

	var appOpts []app.Option
	if searchCache != nil {
		appOpts = append(appOpts, app.WithSearchCache(searchCache))
	}
	stack, err := app.Build(serviceContext, settings, appOpts...)
	if err != nil {
		return err
	}
	defer stack.Close()

	service := job.InitJobService(job.ServiceConfig{
		JobStore:     jobStore,
		MessageStore: messageStore,
	})

	stopWorkerChannel := make(chan bool)
	var workerWaitGroup sync.WaitGroup
	worker.NewPool(service, stack.RAG, stopWorkerChannel, &workerWaitGroup).Start()

	requestHandler := handlers.NewRequestHandler(handlers.NewJobHandler(service), stack.RAG, settings.UploadDir())
	httpServer := server.CreateServer(settings.ListenAddr, server.NewRouter(requestHandler, middleware.New(settings)))

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go httpServer.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	})
	go httpServer.ListenAndServe()

	<-stopExecution
	logger.Info("Server stopped")
	return nil
}

// openStores connects the three redis databases. When redis is down the job and chat stores
// fall back to memory and web search runs uncached.
func openStores(ctx context.Context, settings *config.Settings, logger *logger_i.Logger) (jobStore jobModel.JobStore, messageStore jobModel.MessageStore, cache *store.RedisSearchCache, err error) {
	jobsDB, jobsErr := redisStore.New(ctx, settings, config.RedisJobStore)
	chatDB, chatErr := redisStore.New(ctx, settings, config.RedisMessageStore)
	if jobsErr == nil && chatErr == nil {
		jobStore = store.NewRedisJobStore(jobsDB)
		messageStore = store.NewRedisMessageStore(chatDB)
		if cacheDB, cacheErr := redisStore.New(ctx, settings, config.RedisSearchCacheStore); cacheErr == nil {
			cache = store.NewRedisSearchCache(cacheDB)
		} else {
			logger.Warn("Web search cache disabled", "err", cacheErr)
		}
		return jobStore, messageStore, cache, nil
	}

	redisErr := jobsErr
	if redisErr == nil {
		redisErr = chatErr
	}
	if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
		return nil, nil, nil, fmt.Errorf("redis stores are offline: %w", redisErr)
	}
	logger.Error("Redis stores are offline, using in-memory stores", "err", redisErr)
	return store.InitInMemoryJobStore(), store.InitMessageStore(), nil, nil
}
