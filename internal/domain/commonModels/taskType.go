package commonModels

import (
	"fmt"
	"strings"
	"time"
)

type TaskType string

const (
	DocumentQuery TaskType = "document_query"
	WebSearch     TaskType = "web_search"
	HybridSearch  TaskType = "hybrid_search"
	Summarization TaskType = "summarization"
	Analysis      TaskType = "analysis"

	// ErrorTaskType marks a response produced by the failure path.
	ErrorTaskType = "error"
)

var taskLabels = map[TaskType]string{
	DocumentQuery: "Document Analysis",
	WebSearch:     "Web Search",
	HybridSearch:  "Document + Web Search",
	Summarization: "Summary",
	Analysis:      "Analysis",
}

func (t TaskType) Label() string {
	if label, ok := taskLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t TaskType) Valid() bool {
	_, ok := taskLabels[t]
	return ok
}

// ParseTaskType accepts either the wire value ("web_search") or the enum name ("WEB_SEARCH").
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// TaskLabel maps a response task type string to its display label.
func TaskLabel(taskType string) string {
	if taskType == ErrorTaskType {
		return "Error"
	}
	return TaskType(taskType).Label()
}

func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Words splits on any run of whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}
