package mcpServer

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	ErrEmptyQuery = errors.New("query is required")
	ErrEmptyPath  = errors.New("path is required")
)

type AskInput struct {
	Question         string `json:"question" jsonschema:"the question to answer"`
	IncludeWeb       *bool  `json:"include_web,omitempty" jsonschema:"search the web as well (default true)"`
	IncludeDocuments *bool  `json:"include_documents,omitempty" jsonschema:"search the loaded documents (default true)"`
	MaxResults       int    `json:"max_results,omitempty" jsonschema:"results handed to the model (default TOP_K_RESULTS)"`
}

type SearchInput struct {
	Query      string `json:"query" jsonschema:"the search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results (default TOP_K_RESULTS)"`
}

type SearchOutput struct {
	Results []commonModels.SearchResult `json:"results"`
	Count   int                         `json:"count"`
}

type LoadInput struct {
	Path string `json:"path" jsonschema:"a file or a directory of documents"`
}

type LoadOutput struct {
	Results map[string]commonModels.LoadResult `json:"results"`
	Loaded  int                                `json:"loaded"`
	Failed  int                                `json:"failed"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question from the loaded documents and web search results",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Similarity search over the loaded documents",
	}, s.handleSearchDocuments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_web",
		Description: "Web search through DuckDuckGo with Bing as fallback",
	}, s.handleSearchWeb)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_documents",
		Description: "Load a file or every supported file in a directory into the index",
	}, s.handleLoad)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, commonModels.QueryResponse, error) {
	req := commonModels.NewQueryRequest(input.Question, input.MaxResults)
	if input.IncludeWeb != nil {
		req.IncludeWeb = *input.IncludeWeb
	}
	if input.IncludeDocuments != nil {
		req.IncludeDocuments = *input.IncludeDocuments
	}
	// failures come back as an answer text with task type "error", same as the CLI
	resp := s.ragService.AskQuestion(ctx, req)
	if resp.Sources == nil {
		resp.Sources = []commonModels.SourceRef{}
	}
	return nil, resp, nil
}

func (s *Server) handleSearchDocuments(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}
	return nil, searchOutput(s.ragService.SearchDocuments(ctx, input.Query, input.MaxResults)), nil
}

func (s *Server) handleSearchWeb(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}
	return nil, searchOutput(s.ragService.SearchWeb(ctx, input.Query, input.MaxResults)), nil
}

func (s *Server) handleLoad(ctx context.Context, _ *mcp.CallToolRequest, input LoadInput) (*mcp.CallToolResult, LoadOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, LoadOutput{}, ErrEmptyPath
	}
	results, err := s.ragService.LoadDocuments(ctx, input.Path)
	if err != nil {
		return nil, LoadOutput{}, err
	}
	out := LoadOutput{Results: results}
	if out.Results == nil {
		out.Results = map[string]commonModels.LoadResult{}
	}
	for _, r := range results {
		if r.Success {
			out.Loaded++
		} else {
			out.Failed++
		}
	}
	s.logger.Info("Documents loaded over MCP", "path", input.Path, "loaded", out.Loaded, "failed", out.Failed)
	return nil, out, nil
}

func searchOutput(results []commonModels.SearchResult) SearchOutput {
	if results == nil {
		results = []commonModels.SearchResult{}
	}
	return SearchOutput{Results: results, Count: len(results)}
}
