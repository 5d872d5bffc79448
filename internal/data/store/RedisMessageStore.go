package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/data/redisStore"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

var ErrInvalidChatId = errors.New("invalid chat id")

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", chatId)
	isFound, err := s.store.Exists(ctx, chatId)
	if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	if !s.ValidateChatId(ctx, id) {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Failed validation before saving", "chatId", id)
		return ErrInvalidChatId
	}
	return s.saveChatId(ctx, id, conversation)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", id)
	data, err := json.Marshal(turnOf(conversation))
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, id, data, config.RedisMessageStoreTTL); err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

// InitNewChat resets the chat and stores an empty marker turn so the id validates.
func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil {
		log.Error("Error initializing chat", "error", err)
	}
	return s.saveChatId(ctx, id, jobModel.JobPayload{})
}

// GetMessageHistory returns the most recent turns, oldest first, rendered for the prompt.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", chatId)
	res, err := s.store.ListGetRecent(ctx, chatId, config.MaxHistoryTurnsSent)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return err, nil
	}

	history := make([]string, 0, len(res))
	for _, raw := range res {
		var t turn
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			log.Warn("Skipping unreadable chat turn", "error", err)
			continue
		}
		if line := t.String(); line != "" {
			history = append(history, line)
		}
	}
	return nil, history
}
