package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medassist-backend/internal/extractor"
	"medassist-backend/internal/metrics"
	"medassist-backend/internal/model"
	"medassist-backend/internal/storage"
	"medassist-backend/pkg/logger"
)

type DocumentExtractor interface {
	Extract(ctx context.Context, doc extractor.Document) ([]extractor.Chunk, error)
}

// MedicalService is the entry point shared by the HTTP handlers, the CLI and
// the MCP tools.
type MedicalService struct {
	extractor DocumentExtractor
	pipeline  *AnalysisPipeline
	chat      *ChatService
	store     storage.SessionStore
	metrics   *metrics.Metrics
}

func NewMedicalService(ext DocumentExtractor, pipeline *AnalysisPipeline, chat *ChatService, store storage.SessionStore, m *metrics.Metrics) *MedicalService {
	return &MedicalService{
		extractor: ext,
		pipeline:  pipeline,
		chat:      chat,
		store:     store,
		metrics:   m,
	}
}

// AnalyzeDocument extracts, analyses and stores a new session. Nothing is
// stored unless every step succeeds.
func (s *MedicalService) AnalyzeDocument(ctx context.Context, doc extractor.Document, symptoms string) (resp *model.AnalyzeResponse, err error) {
	defer func() { s.metrics.IncAnalysis(err) }()

	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, fmt.Errorf("%w: symptoms must not be empty", ErrInvalidInput)
	}

	chunks, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}

	result, err := s.pipeline.Analyze(ctx, chunks, symptoms)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.store.CreateSession(ctx, *result, symptoms)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.WithFields(logger.Fields{
		"session_id": sessionID,
		"document":   doc.Name,
		"chunks":     len(chunks),
	}).Info("medical history analysed")

	return &model.AnalyzeResponse{Analysis: *result, SessionID: sessionID}, nil
}

func (s *MedicalService) ContinueChat(ctx context.Context, sessionID, message string) (string, error) {
	return s.chat.ContinueChat(ctx, sessionID, message)
}

func (s *MedicalService) Session(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionResponse{
		SessionID:        session.ID,
		OriginalSymptoms: session.OriginalSymptoms,
		Analysis:         session.Analysis,
		HistoryLength:    len(session.History),
		HistoryWindow:    HistoryWindow,
		History:          session.History,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}, nil
}

func (s *MedicalService) SessionCount() int {
	return s.store.Count()
}
