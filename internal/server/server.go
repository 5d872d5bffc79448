package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/insightRAG/internal/adapter/utils"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/handlers"
	"github.com/akolanti/insightRAG/internal/middleware"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

// NewRouter mounts the API routes behind the middleware chain. /metrics and /swagger stay public.
func NewRouter(h *handlers.RequestHandler, mw *middleware.Middleware) *chi.Mux {
	r := utils.NewRouter()
	r.Get("/health", h.GetHandler)
	r.Post("/chat", mw.Wrap(h.ChatHandler))
	r.Get("/status/{id}", mw.Wrap(h.GetStatusHandler))
	r.Post("/ingest", mw.Wrap(h.PostIngestHandler))
	r.Get("/system", mw.Wrap(h.SystemHandler))
	return r
}

func CreateServer(listenAddr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) ListenAndServe() {
	s.logger.Info("Server is listening", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err.Error(), "addr", s.httpServer.Addr)
	}
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "err", err)
		}

		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		s.logger.Warn("Forced shutdown, workers did not finish in time")
	}
	close(shutdownParams.StopExecution)
}
