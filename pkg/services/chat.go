package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/repositories"
)

// ChatService is the conversational surface over the advisor: it persists
// both sides of each exchange and keeps the session registry current.
// Persistence failures never lose a computed answer.
type ChatService interface {
	// NewSession issues a fresh session ID and registers it.
	NewSession(ctx context.Context) uuid.UUID
	// HandleMessage answers one user message within a session.
	HandleMessage(ctx context.Context, sessionID uuid.UUID, text string) string
	// History returns the session's persisted messages, oldest first.
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	// ClearSession deletes a session's history and registry entry.
	ClearSession(ctx context.Context, sessionID uuid.UUID) error
	// ActiveSessions lists sessions known to the registry.
	ActiveSessions(ctx context.Context) ([]models.SessionInfo, error)
}

type chatService struct {
	advisor  AdvisorService
	messages repositories.ChatRepository
	registry SessionRegistry
	logger   *zap.Logger
}

func NewChatService(advisor AdvisorService, messages repositories.ChatRepository, registry SessionRegistry, logger *zap.Logger) ChatService {
	return &chatService{
		advisor:  advisor,
		messages: messages,
		registry: registry,
		logger:   logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) NewSession(ctx context.Context) uuid.UUID {
	sessionID := uuid.New()
	s.registry.Touch(ctx, sessionID)
	s.logger.Info("session created", zap.String("session_id", sessionID.String()))
	return sessionID
}

func (s *chatService) HandleMessage(ctx context.Context, sessionID uuid.UUID, text string) string {
	s.appendMessage(ctx, sessionID, models.ChatRoleUser, text)

	answer := s.advisor.Answer(ctx, text)

	s.appendMessage(ctx, sessionID, models.ChatRoleAssistant, answer)
	s.registry.Touch(ctx, sessionID)
	return answer
}

// appendMessage persists one side of an exchange. Failures are logged and
// swallowed so a storage outage degrades to an unrecorded conversation.
func (s *chatService) appendMessage(ctx context.Context, sessionID uuid.UUID, role models.ChatRole, content string) {
	message := &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		s.logger.Error("failed to persist chat message",
			zap.String("session_id", sessionID.String()),
			zap.String("role", string(role)),
			zap.Error(err))
	}
}

func (s *chatService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	return s.messages.History(ctx, sessionID, limit)
}

func (s *chatService) ClearSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.messages.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.registry.Remove(ctx, sessionID)
	return nil
}

func (s *chatService) ActiveSessions(ctx context.Context) ([]models.SessionInfo, error) {
	return s.registry.List(ctx)
}
