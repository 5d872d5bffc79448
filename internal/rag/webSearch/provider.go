package webSearch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/customHttpClient"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"golang.org/x/time/rate"
)

var ErrSearchStatus = errors.New("search engine returned non-200 status")

// Cache stores result lists per query. Implementations must tolerate misses and failures silently.
type Cache interface {
	Get(ctx context.Context, query string, maxResults int) ([]commonModels.SearchResult, bool)
	Set(ctx context.Context, query string, maxResults int, results []commonModels.SearchResult)
}

type engineSlot struct {
	engine  Engine
	limiter *rate.Limiter
}

// Provider queries the primary engine and tops up from the fallback engine.
type Provider struct {
	engines []engineSlot
	cache   Cache
	timeout time.Duration
	logger  *logger_i.Logger
}

type Option func(*Provider)

func WithCache(c Cache) Option {
	return func(p *Provider) { p.cache = c }
}

func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// WithRateLimit replaces the per engine politeness limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(p *Provider) {
		for i := range p.engines {
			p.engines[i].limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// NewProvider uses DuckDuckGo then Bing unless engines are given.
func NewProvider(engines []Engine, opts ...Option) *Provider {
	if len(engines) == 0 {
		engines = []Engine{NewDuckDuckGo(), NewBing()}
	}
	p := &Provider{
		timeout: config.WebSearchTimeout,
		logger:  logger_i.NewLogger("WebSearch"),
	}
	for _, e := range engines {
		p.engines = append(p.engines, engineSlot{
			engine:  e,
			limiter: rate.NewLimiter(rate.Limit(config.WebRequestsPerSecond), 1),
		})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session owns the HTTP client used for one search. Callers must Close it.
type Session struct {
	Client *http.Client
}

func (p *Provider) NewSession() *Session {
	return &Session{Client: customHttpClient.NewClient(p.timeout)}
}

func (s *Session) Close() {
	s.Client.CloseIdleConnections()
}

// Search never fails: engine errors are logged and contribute zero results.
func (p *Provider) Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	log := p.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("web_search", time.Since(start)) }()

	if maxResults <= 0 {
		return []commonModels.SearchResult{}
	}
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, query, maxResults); ok {
			log.Debug("Web search cache hit", "query", query)
			return cached
		}
	}

	session := p.NewSession()
	defer session.Close()

	results := make([]commonModels.SearchResult, 0, maxResults)
	seen := make(map[string]struct{})
	for _, slot := range p.engines {
		remaining := maxResults - len(results)
		if remaining <= 0 {
			break
		}
		found, err := p.searchEngine(ctx, session, slot, query, remaining)
		if err != nil {
			log.Warn("Search engine failed", "engine", slot.engine.Name(), "error", err)
			metrics.IncrementWebEngineFailures(slot.engine.Name())
			continue
		}
		for _, r := range found {
			if _, dup := seen[r.Source]; dup {
				continue
			}
			seen[r.Source] = struct{}{}
			results = append(results, r)
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	log.Info("Web search done", "query", query, "results", len(results))
	if p.cache != nil && len(results) > 0 {
		p.cache.Set(ctx, query, maxResults, results)
	}
	return results
}

func (p *Provider) searchEngine(ctx context.Context, s *Session, slot engineSlot, query string, limit int) ([]commonModels.SearchResult, error) {
	if err := slot.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return slot.engine.Search(ctx, s.Client, query, limit)
}
