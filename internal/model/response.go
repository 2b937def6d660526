package model

import "time"

type AnalyzeResponse struct {
	Analysis  AnalysisResult `json:"analysis"`
	SessionID string         `json:"session_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse summarises a session. Only the last HistoryWindow exchanges
// are used when answering follow-up questions.
type SessionResponse struct {
	SessionID        string         `json:"session_id"`
	OriginalSymptoms string         `json:"original_symptoms"`
	Analysis         AnalysisResult `json:"analysis"`
	HistoryLength    int            `json:"history_length"`
	HistoryWindow    int            `json:"history_window"`
	History          []ChatExchange `json:"history"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Sessions int    `json:"sessions"`
}
