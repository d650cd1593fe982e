package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// mockInsightRepository records saved insights for verification.
type mockInsightRepository struct {
	saved   []*models.Insight
	saveErr error

	listResult []*models.Insight
	listErr    error

	SaveCalls     int
	lastListLimit int
}

func (m *mockInsightRepository) Save(ctx context.Context, insight *models.Insight) (int, error) {
	m.SaveCalls++
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, insight)
	return len(m.saved), nil
}

func (m *mockInsightRepository) ListRecent(ctx context.Context, limit int) ([]*models.Insight, error) {
	m.lastListLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

// mockChatRepository records appended messages and configured failures.
type mockChatRepository struct {
	appended  []*models.ChatMessage
	appendErr error

	historyResult []*models.ChatMessage
	historyErr    error

	clearErr error

	deleteResult int64
	deleteErr    error

	lastHistorySession uuid.UUID
	lastHistoryLimit   int
	lastClearSession   uuid.UUID
	lastDeleteCutoff   time.Time
	deleteCalls        int
}

func (m *mockChatRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, message)
	return nil
}

func (m *mockChatRepository) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	m.lastHistorySession = sessionID
	m.lastHistoryLimit = limit
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.historyResult, nil
}

func (m *mockChatRepository) Clear(ctx context.Context, sessionID uuid.UUID) error {
	m.lastClearSession = sessionID
	return m.clearErr
}

func (m *mockChatRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.deleteCalls++
	m.lastDeleteCutoff = cutoff
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	return m.deleteResult, nil
}

// mockSessionRegistry records touch and remove calls.
type mockSessionRegistry struct {
	touched []uuid.UUID
	removed []uuid.UUID

	listResult []models.SessionInfo
	listErr    error
}

func (m *mockSessionRegistry) Touch(ctx context.Context, sessionID uuid.UUID) {
	m.touched = append(m.touched, sessionID)
}

func (m *mockSessionRegistry) List(ctx context.Context) ([]models.SessionInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *mockSessionRegistry) Remove(ctx context.Context, sessionID uuid.UUID) {
	m.removed = append(m.removed, sessionID)
}

// mockAdvisor returns a canned answer and records the query it was asked.
type mockAdvisor struct {
	answer string

	answerCalls int
	lastQuery   string
}

func (m *mockAdvisor) Answer(ctx context.Context, query string) string {
	m.answerCalls++
	m.lastQuery = query
	if m.answer == "" {
		return "Analysis complete."
	}
	return m.answer
}
