package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"medassist-backend/internal/model"
)

var _ SessionStore = (*MemoryStorage)(nil)

type sessionEntry struct {
	mu      sync.Mutex
	session model.Session
}

// MemoryStorage holds sessions for the lifetime of the process. The map lock
// guards membership only; each session has its own lock for appends.
type MemoryStorage struct {
	sessions map[string]*sessionEntry
	mu       sync.RWMutex
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

func (m *MemoryStorage) CreateSession(ctx context.Context, analysis model.AnalysisResult, symptoms string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := m.now()
	entry := &sessionEntry{
		session: model.Session{
			ID:               uuid.NewString(),
			Analysis:         analysis,
			OriginalSymptoms: symptoms,
			History:          []model.ChatExchange{},
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[entry.session.ID] = entry
	return entry.session.ID, nil
}

func (m *MemoryStorage) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	entry, err := m.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.session.Clone(), nil
}

func (m *MemoryStorage) AppendExchange(ctx context.Context, sessionID string, exchange model.ChatExchange) error {
	entry, err := m.entry(sessionID)
	if err != nil {
		return err
	}
	if exchange.UserMessage == "" {
		return ErrInvalidData
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if exchange.Timestamp.IsZero() {
		exchange.Timestamp = m.now()
	}
	entry.session.History = append(entry.session.History, exchange)
	entry.session.UpdatedAt = exchange.Timestamp
	return nil
}

func (m *MemoryStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

func (m *MemoryStorage) entry(sessionID string) (*sessionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}
