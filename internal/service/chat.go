package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"medassist-backend/internal/metrics"
	"medassist-backend/internal/model"
	"medassist-backend/internal/storage"
	"medassist-backend/pkg/logger"
)

// HistoryWindow is how many of the most recent exchanges are replayed to the
// model on each follow-up. Older exchanges stay in the session but are not
// sent.
const HistoryWindow = 3

type ChatService struct {
	store     storage.SessionStore
	chatModel einoModel.BaseChatModel
	prompt    prompt.ChatTemplate
	metrics   *metrics.Metrics
}

func NewChatService(store storage.SessionStore, chatModel einoModel.BaseChatModel, m *metrics.Metrics) *ChatService {
	return &ChatService{
		store:     store,
		chatModel: chatModel,
		prompt:    newFollowUpPrompt(),
		metrics:   m,
	}
}

// ContinueChat answers a follow-up question grounded in the session's analysis
// and recent history, then records the exchange. On any failure the session
// is left unchanged.
func (s *ChatService) ContinueChat(ctx context.Context, sessionID, message string) (reply string, err error) {
	defer func() { s.metrics.IncChatTurn(err) }()

	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message must not be empty", ErrInvalidInput)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	reply, err = generate(ctx, s.chatModel, s.prompt, map[string]any{
		"context":       GroundingContext(session, HistoryWindow),
		"user_question": message,
	})
	if err != nil {
		return "", fmt.Errorf("follow-up for session %s: %w", sessionID, err)
	}
	// The caller may have gone away while the model was answering.
	if err = ctx.Err(); err != nil {
		return "", err
	}

	err = s.store.AppendExchange(ctx, sessionID, model.ChatExchange{
		UserMessage:       message,
		AssistantResponse: reply,
		Timestamp:         time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("record exchange: %w", err)
	}

	logger.WithFields(logger.Fields{
		"session_id":  sessionID,
		"history_len": len(session.History) + 1,
	}).Info("follow-up answered")
	return reply, nil
}

// GroundingContext renders the analysis, the original symptoms and the last
// window exchanges of session as the follow-up prompt context.
func GroundingContext(session *model.Session, window int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Medical History Summary: %s\n", session.Analysis.SummarizedHistory)
	fmt.Fprintf(&b, "Original Symptoms: %s\n", session.OriginalSymptoms)
	fmt.Fprintf(&b, "Previous Analysis: %s\n", session.Analysis.AISuggestion)

	recent := session.RecentHistory(window)
	if len(recent) > 0 {
		b.WriteString("\nPrevious Conversation:\n")
		for _, exchange := range recent {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", exchange.UserMessage, exchange.AssistantResponse)
		}
	}
	return b.String()
}
