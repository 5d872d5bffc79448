package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware runs trace injection, bearer auth and per-IP rate limiting ahead of every handler.
type Middleware struct {
	authToken    string
	noAuthBypass bool
	limiter      *IPRateLimiter
	logger       *logger_i.Logger
}

func New(settings *config.Settings) *Middleware {
	m := &Middleware{
		authToken:    settings.AuthToken,
		noAuthBypass: settings.NoAuthBypass,
		limiter:      NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		logger:       logger_i.NewLogger("middleware"),
	}
	if m.noAuthBypass {
		m.logger.Warn("API_AUTH_TOKEN is not set, every request is accepted without authentication")
	}
	return m
}

func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
		}()

		re := m.processRequest(requestResponseStruct{req: r, writer: rec, logger: m.logger})
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("New request received")
	for _, step := range []func(requestResponseStruct) requestResponseStruct{injectTrace, m.authenticate, m.rateLimiter} {
		re = step(re)
		if re.badRequest.isBadRequest {
			return re
		}
	}
	return re
}
