package llm

import (
	"fmt"
	"strings"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
)

var taskInstructions = map[commonModels.TaskType]string{
	commonModels.Summarization: "Focus on giving concise, comprehensive summaries.",
	commonModels.WebSearch:     "Focus on current information and web sources.",
	commonModels.Analysis:      "Provide detailed analysis and insights.",
}

func SystemPrompt(base string, taskType commonModels.TaskType) string {
	if base == "" {
		base = config.ModelContext
	}
	if extra, ok := taskInstructions[taskType]; ok {
		return base + " " + extra
	}
	return base
}

// UserPrompt renders the context block and the question. Only the most recent history turns are sent.
func UserPrompt(question, contextBlock string, history []string) string {
	var sb strings.Builder
	if len(history) > 0 {
		if len(history) > config.MaxHistoryTurnsSent {
			history = history[len(history)-config.MaxHistoryTurnsSent:]
		}
		sb.WriteString("Conversation history (earlier questions and your answers):\n")
		sb.WriteString(strings.Join(history, "\n"))
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Context:\n%s\n\nQuestion: %s\n\nPlease provide a comprehensive answer based on the context above.", contextBlock, question)
	return sb.String()
}
