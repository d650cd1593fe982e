package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/database"
	"github.com/datawise-ai/advisor-engine/pkg/logging"
	"github.com/datawise-ai/advisor-engine/pkg/models"
	enginesql "github.com/datawise-ai/advisor-engine/pkg/sql"
)

// PostgresExecutor runs generated SQL against the warehouse. Every
// statement passes the read-only gate first; the analysis layer treats any
// returned error as "skip this table", so failures surface as log lines
// and degraded answers rather than aborts.
type PostgresExecutor struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPostgresExecutor creates a query runner over the warehouse pool.
func NewPostgresExecutor(db *database.DB, logger *zap.Logger) *PostgresExecutor {
	return &PostgresExecutor{
		db:     db,
		logger: logger.Named("executor"),
	}
}

// Run implements Executor.
func (e *PostgresExecutor) Run(ctx context.Context, sqlQuery string) ([]models.Row, error) {
	validated := enginesql.ValidateReadOnly(sqlQuery)
	if validated.Error != nil {
		e.logger.Warn("rejected generated SQL",
			zap.String("query", logging.SanitizeQuery(sqlQuery)),
			zap.Error(validated.Error))
		return nil, validated.Error
	}
	if validated.NormalizedSQL == "" {
		return nil, fmt.Errorf("empty query")
	}

	start := time.Now()

	rows, err := e.db.Query(ctx, validated.NormalizedSQL)
	if err != nil {
		e.logger.Error("warehouse query failed",
			zap.String("query", logging.SanitizeQuery(sqlQuery)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	results := make([]models.Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	e.logger.Debug("warehouse query completed",
		zap.String("query", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

// normalizeValue converts numeric values to float64 so downstream growth
// arithmetic never has to care whether a SUM came back as bigint, double
// precision or numeric.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int16:
		return float64(n)
	case int:
		return float64(n)
	case uint32:
		return float64(n)
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

// Ensure PostgresExecutor implements Executor at compile time.
var _ Executor = (*PostgresExecutor)(nil)
