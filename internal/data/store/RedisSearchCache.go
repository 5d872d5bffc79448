package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/data/redisStore"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

// RedisSearchCache keeps web search results for a short while so repeated questions skip the engines.
type RedisSearchCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisSearchCache(store *redisStore.Store) *RedisSearchCache {
	return &RedisSearchCache{
		store:  store,
		logger: logger_i.NewLogger("SearchCache"),
	}
}

func searchCacheKey(query string, maxResults int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha1.Sum([]byte(normalized))
	return fmt.Sprintf("websearch:%d:%s", maxResults, hex.EncodeToString(sum[:]))
}

func (c *RedisSearchCache) Get(ctx context.Context, query string, maxResults int) ([]commonModels.SearchResult, bool) {
	val, err := c.store.Get(ctx, searchCacheKey(query, maxResults))
	if err != nil {
		if !c.store.IsNil(err) {
			c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("Search cache read failed", "error", err)
		}
		return nil, false
	}
	var results []commonModels.SearchResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *RedisSearchCache) Set(ctx context.Context, query string, maxResults int, results []commonModels.SearchResult) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, searchCacheKey(query, maxResults), data, config.WebSearchCacheTTL); err != nil {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("Search cache write failed", "error", err)
	}
}
