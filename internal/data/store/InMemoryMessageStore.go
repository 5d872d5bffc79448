package store

import (
	"context"
	"sync"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
)

type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]turn
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]turn),
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.chatMap[id]; !ok {
		return ErrInvalidChatId
	}
	store.chatMap[id] = append(store.chatMap[id], turnOf(conversation))
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]turn, 0)
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	turns := store.chatMap[chatId]
	if len(turns) > config.MaxHistoryTurnsSent {
		turns = turns[len(turns)-config.MaxHistoryTurnsSent:]
	}
	history := make([]string, 0, len(turns))
	for _, t := range turns {
		if line := t.String(); line != "" {
			history = append(history, line)
		}
	}
	return nil, history
}
