package rag_test

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB"
)

// MockStore implements rag.VectorStore
type MockStore struct {
	OnAddDocument func(ctx context.Context, doc commonModels.Document) (vectorDB.AddStats, error)
	OnSearch      func(ctx context.Context, query string, maxResults int) []commonModels.SearchResult
	OnCount       func(ctx context.Context) (int, error)
	SearchCalls   int32
}

func (m *MockStore) AddDocument(ctx context.Context, doc commonModels.Document) (vectorDB.AddStats, error) {
	if m.OnAddDocument != nil {
		return m.OnAddDocument(ctx, doc)
	}
	return vectorDB.AddStats{Chunks: 1, Added: 1}, nil
}

func (m *MockStore) Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	atomic.AddInt32(&m.SearchCalls, 1)
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, maxResults)
	}
	return []commonModels.SearchResult{}
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	return 0, nil
}

func (m *MockStore) EmbeddingModel() string { return "mock-embedding" }

// MockWeb implements rag.WebSearcher
type MockWeb struct {
	OnSearch func(ctx context.Context, query string, maxResults int) []commonModels.SearchResult
	Calls    int32
}

func (m *MockWeb) Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	atomic.AddInt32(&m.Calls, 1)
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, maxResults)
	}
	return []commonModels.SearchResult{}
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate  func(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string
	LastRequest commonModels.QueryRequest
	LastContext string
}

func (m *MockLLM) GenerateResponse(ctx context.Context, req commonModels.QueryRequest, contextBlock string) string {
	m.LastRequest = req
	m.LastContext = contextBlock
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req, contextBlock)
	}
	return "mocked llm response"
}

func (m *MockLLM) Model() string { return "mock-model" }

func docResult(title, content string, score float64) commonModels.SearchResult {
	return commonModels.SearchResult{
		Content:    content,
		Source:     title + ".pdf",
		Score:      score,
		Metadata:   map[string]any{"document_title": title},
		SourceType: commonModels.SourceDocument,
	}
}

func webResult(title, link string) commonModels.SearchResult {
	return commonModels.SearchResult{
		Content:    title + "\nsnippet",
		Source:     link,
		Score:      1,
		Metadata:   map[string]any{"title": title},
		SourceType: commonModels.SourceWeb,
	}
}
