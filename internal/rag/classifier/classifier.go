package classifier

import (
	"strings"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

type rule struct {
	taskType commonModels.TaskType
	keywords []string
}

// rules are checked in order and the first keyword hit wins
var rules = []rule{
	{commonModels.Summarization, []string{"summarize", "summary", "overview"}},
	{commonModels.WebSearch, []string{"current", "latest", "news", "market"}},
	{commonModels.DocumentQuery, []string{"contract", "document", "clause", "agreement"}},
	{commonModels.Analysis, []string{"analyze", "analyse", "analysis", "compare", "evaluate", "assess"}},
}

// Classify picks a task type from keywords in the question, defaulting to hybrid search.
// Matching is by substring, so "documentation" counts as "document".
func Classify(question string) commonModels.TaskType {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.taskType
			}
		}
	}
	return commonModels.HybridSearch
}
