package classifier

import (
	"testing"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     commonModels.TaskType
	}{
		{"Summarize the report", commonModels.Summarization},
		{"Give me an OVERVIEW", commonModels.Summarization},
		{"What is the latest market news?", commonModels.WebSearch},
		{"What does clause 4 of the contract say?", commonModels.DocumentQuery},
		{"Compare the two offers", commonModels.Analysis},
		{"Please assess the risk", commonModels.Analysis},
		{"What is the capital of France?", commonModels.HybridSearch},
		{"", commonModels.HybridSearch},
		// earlier lists win
		{"Summarize the latest news", commonModels.Summarization},
		{"current contract terms", commonModels.WebSearch},
		{"analyze this agreement", commonModels.DocumentQuery},
		// substring matching
		{"Read the documentation", commonModels.DocumentQuery},
		{"concurrently", commonModels.WebSearch},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := Classify(tt.question); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.question, got, tt.want)
			}
		})
	}
}
