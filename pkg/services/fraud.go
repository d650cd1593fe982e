package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/apperrors"
	"github.com/datawise-ai/advisor-engine/pkg/config"
	"github.com/datawise-ai/advisor-engine/pkg/models"
	enginesql "github.com/datawise-ai/advisor-engine/pkg/sql"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

// Rule identifiers; these surface in scan pool logs.
const (
	ruleLargeTransactions = "large_transactions"
	ruleOddHours          = "odd_hours"
	ruleRapidActivity     = "rapid_activity"
)

// FraudService scans a transaction table for suspicious patterns: unusually
// large amounts, late-night activity, and users with rapid bursts of
// transactions. The three rule queries run concurrently.
type FraudService interface {
	Scan(ctx context.Context, table string, amountThreshold float64) (string, error)
}

type fraudService struct {
	executor  warehouse.Executor
	pool      *warehouse.ScanPool
	threshold float64
	maxDaily  int
	logger    *zap.Logger
}

func NewFraudService(executor warehouse.Executor, pool *warehouse.ScanPool, cfg config.FraudConfig, logger *zap.Logger) FraudService {
	return &fraudService{
		executor:  executor,
		pool:      pool,
		threshold: cfg.AmountThreshold,
		maxDaily:  cfg.MaxDailyTransactions,
		logger:    logger.Named("fraud"),
	}
}

var _ FraudService = (*fraudService)(nil)

// Scan runs all three rules against the named table and renders the combined
// report. The table name arrives over the API, so it is screened and quoted
// before query assembly. A non-positive threshold falls back to the
// configured default.
func (s *fraudService) Scan(ctx context.Context, table string, amountThreshold float64) (string, error) {
	if result := enginesql.CheckIdentifier("table", table); result != nil {
		s.logger.Warn("rejected fraud scan table name",
			zap.String("value", result.Value),
			zap.String("reason", result.Reason))
		return "", fmt.Errorf("table name %q (%s): %w", table, result.Reason, apperrors.ErrInvalidInput)
	}
	quoted := pgx.Identifier{table}.Sanitize()

	threshold := amountThreshold
	if threshold <= 0 {
		threshold = s.threshold
	}
	thresholdLiteral := strconv.FormatFloat(threshold, 'f', -1, 64)

	tasks := []warehouse.Task[[]models.Row]{
		{
			ID: ruleLargeTransactions,
			Execute: func(ctx context.Context) ([]models.Row, error) {
				return s.executor.Run(ctx, fmt.Sprintf(
					"SELECT * FROM %s WHERE amount > %s ORDER BY amount DESC LIMIT 5",
					quoted, thresholdLiteral))
			},
		},
		{
			ID: ruleOddHours,
			Execute: func(ctx context.Context) ([]models.Row, error) {
				return s.executor.Run(ctx, fmt.Sprintf(
					"SELECT * FROM %s WHERE EXTRACT(HOUR FROM timestamp) BETWEEN 0 AND 5 ORDER BY timestamp DESC LIMIT 5",
					quoted))
			},
		},
		{
			ID: ruleRapidActivity,
			Execute: func(ctx context.Context) ([]models.Row, error) {
				return s.executor.Run(ctx, fmt.Sprintf(
					"SELECT user_id, COUNT(*) as tx_count, MIN(timestamp) as first_tx, MAX(timestamp) as last_tx "+
						"FROM %s WHERE timestamp >= NOW() - INTERVAL '1 day' "+
						"GROUP BY user_id HAVING COUNT(*) > %d ORDER BY tx_count DESC LIMIT 5",
					quoted, s.maxDaily))
			},
		},
	}

	outcomes := warehouse.RunAll(ctx, s.pool, tasks)

	findings := make(map[string][]models.Row, len(outcomes))
	for _, outcome := range outcomes {
		// A failed rule reports as no findings; RunAll already logged it.
		if outcome.Err != nil {
			continue
		}
		findings[outcome.ID] = outcome.Result
	}

	var b strings.Builder
	b.WriteString("Fraud Analysis Report:\n")
	fmt.Fprintf(&b, "\nLarge transactions (>%s):\n", thresholdLiteral)
	writeFindings(&b, findings[ruleLargeTransactions])
	b.WriteString("\n\nTransactions at odd hours (00:00-05:00):\n")
	writeFindings(&b, findings[ruleOddHours])
	fmt.Fprintf(&b, "\n\nUsers with >%d transactions in 1 day:\n", s.maxDaily)
	writeFindings(&b, findings[ruleRapidActivity])

	return b.String(), nil
}

// writeFindings renders each row as a one-line JSON object, or "None found"
// when the rule matched nothing.
func writeFindings(b *strings.Builder, rows []models.Row) {
	if len(rows) == 0 {
		b.WriteString("None found")
		return
	}
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		encoded, err := json.Marshal(row)
		if err != nil {
			fmt.Fprintf(b, "%v", map[string]any(row))
			continue
		}
		b.Write(encoded)
	}
}
