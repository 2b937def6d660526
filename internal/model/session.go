package model

import (
	"slices"
	"time"
)

const (
	summaryHeading    = "=== Summarized Medical History ==="
	suggestionHeading = "=== AI Suggestion Based on History and Symptoms ==="
)

// AnalysisResult is produced once per uploaded document and never changes.
type AnalysisResult struct {
	SummarizedHistory string `json:"summarized_history"`
	AISuggestion      string `json:"ai_suggestion"`
	CompleteChat      string `json:"complete_chat"`
}

func NewAnalysisResult(summary, suggestion string) AnalysisResult {
	return AnalysisResult{
		SummarizedHistory: summary,
		AISuggestion:      suggestion,
		CompleteChat:      summaryHeading + "\n" + summary + "\n\n" + suggestionHeading + "\n" + suggestion,
	}
}

type ChatExchange struct {
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Timestamp         time.Time `json:"timestamp"`
}

type Session struct {
	ID               string         `json:"id"`
	Analysis         AnalysisResult `json:"analysis"`
	OriginalSymptoms string         `json:"original_symptoms"`
	History          []ChatExchange `json:"history"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	cp := *s
	cp.History = slices.Clone(s.History)
	return &cp
}

// RecentHistory returns at most the last n exchanges, oldest first.
func (s *Session) RecentHistory(n int) []ChatExchange {
	if n <= 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
