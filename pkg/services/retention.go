package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/config"
	"github.com/datawise-ai/advisor-engine/pkg/repositories"
)

// RetentionService prunes chat history past the configured horizon. Insights
// are deliberately out of scope: that table is append-only.
type RetentionService interface {
	PruneChatHistory(ctx context.Context) (int64, error)
}

type retentionService struct {
	messages repositories.ChatRepository
	horizon  time.Duration
	logger   *zap.Logger
}

// NewRetentionService creates the pruning job. A zero or negative
// chat-history horizon disables pruning.
func NewRetentionService(messages repositories.ChatRepository, cfg config.RetentionConfig, logger *zap.Logger) RetentionService {
	return &retentionService{
		messages: messages,
		horizon:  time.Duration(cfg.ChatHistoryDays) * 24 * time.Hour,
		logger:   logger.Named("retention"),
	}
}

var _ RetentionService = (*retentionService)(nil)

func (s *retentionService) PruneChatHistory(ctx context.Context) (int64, error) {
	if s.horizon <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-s.horizon)
	deleted, err := s.messages.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("chat history pruning failed", zap.Error(err))
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("pruned chat history",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
