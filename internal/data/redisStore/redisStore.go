package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Store wraps one logical redis database. Jobs, chat history and the web search cache each get their own.
type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// New connects to database dbType and pings it. The client is closed when ctx is done.
func New(ctx context.Context, settings *config.Settings, dbType int) (*Store, error) {
	logger := logger_i.NewLogger(fmt.Sprintf("Redis Store %d", dbType))
	client := redis.NewClient(&redis.Options{
		Addr:                  settings.RedisAddr,
		Password:              settings.RedisPassword,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis is offline at %s: %w", settings.RedisAddr, err)
	}
	logger.Info("Redis store ready", "addr", settings.RedisAddr, "db", dbType)

	s := &Store{client: client, Type: dbType, logger: logger}
	go s.closeOnDone(ctx)
	return s, nil
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Redis Store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
	}
}

// FromClient wraps an existing client, used with miniredis in tests.
func FromClient(client *redis.Client, dbType int) *Store {
	return &Store{
		client: client,
		Type:   dbType,
		logger: logger_i.NewLogger(fmt.Sprintf("Redis Store %d", dbType)),
	}
}
