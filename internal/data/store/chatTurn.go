package store

import (
	"fmt"
	"strings"

	"github.com/akolanti/insightRAG/internal/domain/jobModel"
)

// turn is what chat history keeps of a finished job.
type turn struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

func turnOf(p jobModel.JobPayload) turn {
	t := turn{Question: p.Question, Answer: p.Answer}
	for _, s := range p.Sources {
		t.Sources = append(t.Sources, s.Source)
	}
	return t
}

func (t turn) String() string {
	if t.Question == "" && t.Answer == "" {
		return ""
	}
	line := fmt.Sprintf("Question: %s\nAnswer: %s", t.Question, t.Answer)
	if len(t.Sources) > 0 {
		line += "\nSources: " + strings.Join(t.Sources, ", ")
	}
	return line
}
