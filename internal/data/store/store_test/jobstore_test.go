package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/data/redisStore"
	"github.com/akolanti/insightRAG/internal/data/store"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T, db int) (*miniredis.Miniredis, *redisStore.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, redisStore.FromClient(client, db)
}

func traceCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := traceCtx()
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{
			Question:   "What is the notice period?",
			Answer:     "Thirty days.",
			TaskType:   "document_query",
			Confidence: 85,
			Sources: []commonModels.SourceRef{
				{Type: commonModels.SourceDocument, Title: "lease", Source: "lease.pdf", Score: 0.91},
			},
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.Answer != testJob.JobPayload.Answer {
			t.Errorf("Data mismatch! Got %s, want %s", retrievedJob.JobPayload.Answer, testJob.JobPayload.Answer)
		}
		if len(retrievedJob.JobPayload.Sources) != 1 || retrievedJob.JobPayload.Sources[0].Source != "lease.pdf" {
			t.Errorf("Sources mismatch: %+v", retrievedJob.JobPayload.Sources)
		}
		if ttl := mr.TTL(jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("TTL got %v, want %v", ttl, config.RedisJobStoreTTL)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt Job", func(t *testing.T) {
		mr.Set("corrupt", "{not json")
		if _, found := jobStore.GetJob(ctx, "corrupt"); found {
			t.Error("Expected found=false for corrupt value")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := traceCtx()
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job missing after concurrent saves")
	}
}

func TestRedisMessageStore_History(t *testing.T) {
	mr, internalStore := newRedis(t, config.RedisMessageStore)
	messages := store.NewRedisMessageStore(internalStore)
	ctx := traceCtx()

	if err := messages.TrySaveChat(ctx, "chat-1", jobModel.JobPayload{Question: "q"}); err != store.ErrInvalidChatId {
		t.Fatalf("expected ErrInvalidChatId, got %v", err)
	}

	if err := messages.InitNewChat(ctx, "chat-1"); err != nil {
		t.Fatal(err)
	}
	if !messages.ValidateChatId(ctx, "chat-1") {
		t.Fatal("chat should exist after init")
	}

	for i := 0; i < 7; i++ {
		payload := jobModel.JobPayload{
			Question: "question " + string(rune('a'+i)),
			Answer:   "answer " + string(rune('a'+i)),
			Sources:  []commonModels.SourceRef{{Source: "lease.pdf"}},
		}
		if err := messages.TrySaveChat(ctx, "chat-1", payload); err != nil {
			t.Fatal(err)
		}
	}

	err, history := messages.GetMessageHistory(ctx, "chat-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != config.MaxHistoryTurnsSent {
		t.Fatalf("history got %d, want %d", len(history), config.MaxHistoryTurnsSent)
	}
	if history[0] != "Question: question c\nAnswer: answer c\nSources: lease.pdf" {
		t.Errorf("oldest kept turn got %q", history[0])
	}
	if history[len(history)-1] != "Question: question g\nAnswer: answer g\nSources: lease.pdf" {
		t.Errorf("newest turn got %q", history[len(history)-1])
	}
	if ttl := mr.TTL("chat-1"); ttl <= 0 || ttl > config.RedisMessageStoreTTL {
		t.Errorf("chat TTL got %v", ttl)
	}

	err, history = messages.GetMessageHistory(ctx, "unknown-chat")
	if err != nil || len(history) != 0 {
		t.Errorf("unknown chat got err=%v history=%v", err, history)
	}
}

func TestInMemoryMessageStore_History(t *testing.T) {
	messages := store.InitMessageStore()
	ctx := traceCtx()

	if err := messages.TrySaveChat(ctx, "c", jobModel.JobPayload{}); err != store.ErrInvalidChatId {
		t.Fatalf("expected ErrInvalidChatId, got %v", err)
	}
	_ = messages.InitNewChat(ctx, "c")
	_ = messages.TrySaveChat(ctx, "c", jobModel.JobPayload{Question: "hi", Answer: "hello"})

	_, history := messages.GetMessageHistory(ctx, "c")
	if len(history) != 1 || history[0] != "Question: hi\nAnswer: hello" {
		t.Errorf("history got %v", history)
	}
}

func TestRedisSearchCache(t *testing.T) {
	mr, internalStore := newRedis(t, config.RedisSearchCacheStore)
	cache := store.NewRedisSearchCache(internalStore)
	ctx := traceCtx()

	if _, ok := cache.Get(ctx, "lease law", 5); ok {
		t.Fatal("empty cache should miss")
	}

	results := []commonModels.SearchResult{{
		Content:    "Lease law\nsnippet",
		Source:     "https://a.example",
		Score:      1,
		Metadata:   map[string]any{"title": "Lease law", "search_engine": "duckduckgo"},
		SourceType: commonModels.SourceWeb,
		Rank:       1,
	}}
	cache.Set(ctx, "lease law", 5, results)

	got, ok := cache.Get(ctx, "  Lease   LAW ", 5)
	if !ok || len(got) != 1 {
		t.Fatalf("expected normalized hit, got ok=%v %v", ok, got)
	}
	if got[0].Title() != "Lease law" || got[0].SourceType != commonModels.SourceWeb || got[0].Rank != 1 {
		t.Errorf("cached result mismatch: %+v", got[0])
	}
	if _, ok := cache.Get(ctx, "lease law", 3); ok {
		t.Error("different max results should miss")
	}

	mr.FastForward(config.WebSearchCacheTTL + time.Second)
	if _, ok := cache.Get(ctx, "lease law", 5); ok {
		t.Error("entry should expire")
	}
}
