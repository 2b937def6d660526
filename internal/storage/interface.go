package storage

import (
	"context"

	"medassist-backend/internal/model"
)

// SessionStore keeps analysis sessions for follow-up chat. Sessions are only
// ever created and appended to.
type SessionStore interface {
	CreateSession(ctx context.Context, analysis model.AnalysisResult, symptoms string) (string, error)
	// GetSession returns a snapshot; mutating it does not affect the store.
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	AppendExchange(ctx context.Context, sessionID string, exchange model.ChatExchange) error
	Count() int
}
