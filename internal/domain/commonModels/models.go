package commonModels

import "time"

type Document struct {
	Id              string         `json:"id"`
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	MarkdownContent string         `json:"markdown_content"`
	Metadata        map[string]any `json:"metadata"`
	ProcessingTime  time.Duration  `json:"processing_time"`
	CreatedAt       time.Time      `json:"created_at"`
}

// WordCount counts whitespace separated words of the normalized content.
func (d Document) WordCount() int {
	return len(Words(d.Content))
}

// Filename returns the file name recorded at processing time.
func (d Document) Filename() string {
	if name, ok := d.Metadata["filename"].(string); ok {
		return name
	}
	return d.Title
}

// TextChunk is a window of words. StartPos and EndPos are word offsets into the document.
type TextChunk struct {
	Index    int    `json:"index"`
	Content  string `json:"content"`
	StartPos int    `json:"start_pos"`
	EndPos   int    `json:"end_pos"`
}

type SourceType string

const (
	SourceDocument SourceType = "document"
	SourceWeb      SourceType = "web"
)

type SearchResult struct {
	Content    string         `json:"content"`
	Source     string         `json:"source"`
	Score      float64        `json:"score"`
	Metadata   map[string]any `json:"metadata"`
	SourceType SourceType     `json:"source_type"`
	Rank       int            `json:"rank"`
}

// Title prefers the web title, then the document title.
func (r SearchResult) Title() string {
	for _, key := range []string{"title", "document_title"} {
		if v, ok := r.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return "Unknown"
}

type QueryRequest struct {
	Question         string   `json:"question"`
	TaskType         TaskType `json:"task_type,omitempty"`
	MaxResults       int      `json:"max_results"`
	IncludeWeb       bool     `json:"include_web"`
	IncludeDocuments bool     `json:"include_documents"`
	History          []string `json:"history,omitempty"`
}

// NewQueryRequest returns a request with both retrieval sources enabled.
func NewQueryRequest(question string, maxResults int) QueryRequest {
	return QueryRequest{
		Question:         question,
		MaxResults:       maxResults,
		IncludeWeb:       true,
		IncludeDocuments: true,
	}
}

type SourceRef struct {
	Type   SourceType `json:"type"`
	Title  string     `json:"title"`
	Source string     `json:"source"`
	Score  float64    `json:"score"`
}

type QueryResponse struct {
	Answer         string        `json:"answer"`
	TaskType       string        `json:"task_type"`
	ProcessingTime time.Duration `json:"processing_time"`
	Confidence     float64       `json:"confidence"`
	Sources        []SourceRef   `json:"sources"`
	HasSources     bool          `json:"has_sources"`
	TotalSources   int           `json:"total_sources"`
}

// FormattedTime renders the processing time the way the CLI prints it, e.g. "1.25s".
func (r QueryResponse) FormattedTime() string {
	return FormatSeconds(r.ProcessingTime)
}

// DistinctSources counts unique titles among the cited sources, web pages included.
// A source without a title counts by its location.
func (r QueryResponse) DistinctSources() int {
	seen := make(map[string]struct{})
	for _, s := range r.Sources {
		key := s.Title
		if key == "" {
			key = s.Source
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}

type LoadResult struct {
	Path      string `json:"path"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	WordCount int    `json:"word_count,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
}

type SystemStatus struct {
	LoadedDocuments    int      `json:"loaded_documents"`
	IndexedChunks      int      `json:"indexed_chunks"`
	SystemReady        bool     `json:"system_ready"`
	SupportedFileTypes []string `json:"supported_file_types"`
	Model              string   `json:"model"`
	EmbeddingModel     string   `json:"embedding_model"`
}
