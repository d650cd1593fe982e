package repositories

import (
	"context"
	"fmt"

	"github.com/datawise-ai/advisor-engine/pkg/database"
	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// InsightRepository provides data access for persisted analysis insights.
// Insights are append-only; nothing updates or deletes them.
type InsightRepository interface {
	Save(ctx context.Context, insight *models.Insight) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Insight, error)
}

type insightRepository struct {
	db *database.DB
}

// NewInsightRepository creates a new InsightRepository.
func NewInsightRepository(db *database.DB) InsightRepository {
	return &insightRepository{db: db}
}

var _ InsightRepository = (*insightRepository)(nil)

func (r *insightRepository) Save(ctx context.Context, insight *models.Insight) (int, error) {
	query := `
		INSERT INTO advisor_insights (summary, source_query)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, insight.Summary, insight.SourceQuery).
		Scan(&insight.ID, &insight.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save insight: %w", err)
	}

	return insight.ID, nil
}

func (r *insightRepository) ListRecent(ctx context.Context, limit int) ([]*models.Insight, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, summary, source_query, created_at
		FROM advisor_insights
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	insights := make([]*models.Insight, 0)
	for rows.Next() {
		var i models.Insight
		if err := rows.Scan(&i.ID, &i.Summary, &i.SourceQuery, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}

	return insights, nil
}
