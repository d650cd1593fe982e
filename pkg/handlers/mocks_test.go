package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// mockChatServiceUnit is a configurable ChatService mock for handler tests.
type mockChatServiceUnit struct {
	sessionID        uuid.UUID
	answer           string
	historyResult    []*models.ChatMessage
	historyErr       error
	clearErr         error
	sessionsResult   []models.SessionInfo
	sessionsErr      error
	newSessionCalls  int
	lastMessage      string
	lastSessionID    uuid.UUID
	lastHistoryLimit int
}

func (m *mockChatServiceUnit) NewSession(ctx context.Context) uuid.UUID {
	m.newSessionCalls++
	if m.sessionID == uuid.Nil {
		m.sessionID = uuid.New()
	}
	return m.sessionID
}

func (m *mockChatServiceUnit) HandleMessage(ctx context.Context, sessionID uuid.UUID, text string) string {
	m.lastSessionID = sessionID
	m.lastMessage = text
	if m.answer != "" {
		return m.answer
	}
	return "Analysis complete."
}

func (m *mockChatServiceUnit) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	m.lastSessionID = sessionID
	m.lastHistoryLimit = limit
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if m.historyResult != nil {
		return m.historyResult, nil
	}
	return []*models.ChatMessage{}, nil
}

func (m *mockChatServiceUnit) ClearSession(ctx context.Context, sessionID uuid.UUID) error {
	m.lastSessionID = sessionID
	return m.clearErr
}

func (m *mockChatServiceUnit) ActiveSessions(ctx context.Context) ([]models.SessionInfo, error) {
	if m.sessionsErr != nil {
		return nil, m.sessionsErr
	}
	if m.sessionsResult != nil {
		return m.sessionsResult, nil
	}
	return []models.SessionInfo{}, nil
}

// mockFraudServiceUnit is a configurable FraudService mock for handler tests.
type mockFraudServiceUnit struct {
	report        string
	err           error
	lastTable     string
	lastThreshold float64
}

func (m *mockFraudServiceUnit) Scan(ctx context.Context, table string, amountThreshold float64) (string, error) {
	m.lastTable = table
	m.lastThreshold = amountThreshold
	if m.err != nil {
		return "", m.err
	}
	return m.report, nil
}

// mockInsightRepositoryUnit is a configurable InsightRepository mock for
// handler tests.
type mockInsightRepositoryUnit struct {
	insights  []*models.Insight
	listErr   error
	lastLimit int
}

func (m *mockInsightRepositoryUnit) Save(ctx context.Context, insight *models.Insight) (int, error) {
	return 0, nil
}

func (m *mockInsightRepositoryUnit) ListRecent(ctx context.Context, limit int) ([]*models.Insight, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.insights != nil {
		return m.insights, nil
	}
	return []*models.Insight{}, nil
}
