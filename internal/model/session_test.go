package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAnalysisResult_CompleteChat(t *testing.T) {
	result := NewAnalysisResult("Stable hypertension.", "See a cardiologist.")

	assert.Equal(t, "Stable hypertension.", result.SummarizedHistory)
	assert.Equal(t, "See a cardiologist.", result.AISuggestion)
	assert.Equal(t,
		"=== Summarized Medical History ===\nStable hypertension.\n\n"+
			"=== AI Suggestion Based on History and Symptoms ===\nSee a cardiologist.",
		result.CompleteChat)
}

func TestSession_RecentHistory(t *testing.T) {
	s := &Session{}
	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		s.History = append(s.History, ChatExchange{UserMessage: q})
	}

	recent := s.RecentHistory(3)
	assert.Equal(t, []string{"q3", "q4", "q5"}, userMessages(recent))
	assert.Len(t, s.RecentHistory(10), 5)
	assert.Empty(t, s.RecentHistory(0))
	assert.Empty(t, (&Session{}).RecentHistory(3))
}

func TestSession_Clone(t *testing.T) {
	s := &Session{ID: "id", History: []ChatExchange{{UserMessage: "q1"}}}
	cp := s.Clone()
	cp.History[0].UserMessage = "changed"

	assert.Equal(t, "q1", s.History[0].UserMessage)
	assert.Equal(t, "id", cp.ID)
}

func userMessages(history []ChatExchange) []string {
	out := make([]string, 0, len(history))
	for _, e := range history {
		out = append(out, e.UserMessage)
	}
	return out
}
