package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/repositories"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

// NoSuitableColumnsMessage is returned when every candidate table failed
// every analysis step.
const NoSuitableColumnsMessage = "Could not find suitable columns for sales amount and date in any sales table."

const (
	comparisonDisclaimer = "Note: This response is based on early, incomplete prototype data and may not reflect the final validated dataset."
	grandTotalDisclaimer = "Note: This analysis is based on prototype data and may not reflect the final validated dataset."
)

// AnalysisService turns discovered sales tables and extracted periods into a
// human-readable report. Every path terminates in a string; failures degrade
// to less informative text, never to an error.
type AnalysisService interface {
	Analyze(ctx context.Context, tables []models.CandidateTable, periods models.PeriodSpec) string
}

type analysisService struct {
	executor warehouse.Executor
	insights repositories.InsightRepository
	printer  *message.Printer
	logger   *zap.Logger
}

// NewAnalysisService creates the analysis engine. The insight repository
// receives one write per successful period comparison; a nil repository
// disables persistence.
func NewAnalysisService(executor warehouse.Executor, insights repositories.InsightRepository, logger *zap.Logger) AnalysisService {
	return &analysisService{
		executor: executor,
		insights: insights,
		printer:  message.NewPrinter(language.English),
		logger:   logger.Named("analysis"),
	}
}

var _ AnalysisService = (*analysisService)(nil)

func (s *analysisService) Analyze(ctx context.Context, tables []models.CandidateTable, periods models.PeriodSpec) string {
	for _, table := range tables {
		report, ok := s.analyzeTable(ctx, table, periods)
		if ok {
			return report
		}
	}
	return NoSuitableColumnsMessage
}

// analyzeTable runs the quality check and then either the period comparison
// or the grand total. A false return means this table is skipped and the
// next candidate is tried.
func (s *analysisService) analyzeTable(ctx context.Context, table models.CandidateTable, periods models.PeriodSpec) (string, bool) {
	quality, err := s.checkQuality(ctx, table)
	if err != nil {
		s.logger.Warn("data quality check failed, skipping table",
			zap.String("schema", table.Schema),
			zap.String("table", table.Table),
			zap.Error(err))
		return "", false
	}

	// The warning survives into whichever report this table produces.
	warning := ""
	if quality.NullOrZeroCount > 0 {
		s.logger.Warn("amount column has zero or missing values",
			zap.String("table", table.Table),
			zap.Int64("zero_or_null_count", quality.NullOrZeroCount),
			zap.Int64("total_rows", quality.TotalRows))
		warning = fmt.Sprintf("Warning: Found %d records with zero or missing sales amounts.\n\n", quality.NullOrZeroCount)
	}

	if periods.WantsComparison() {
		report, ok := s.compareYears(ctx, table, periods)
		if !ok {
			return "", false
		}
		return warning + report, true
	}

	report, ok := s.grandTotal(ctx, table)
	if !ok {
		return "", false
	}
	return warning + report, true
}

// checkQuality runs the aggregate health query for one table's amount column.
func (s *analysisService) checkQuality(ctx context.Context, table models.CandidateTable) (models.QualityReport, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) as total_rows, "+
			"COUNT(CASE WHEN %[1]s IS NULL OR %[1]s = 0 THEN 1 END) as zero_or_null_count, "+
			"MIN(%[1]s) as min_amount, MAX(%[1]s) as max_amount, AVG(%[1]s) as avg_amount "+
			"FROM %[2]s.%[3]s",
		table.AmountColumn, table.Schema, table.Table)

	rows, err := s.executor.Run(ctx, query)
	if err != nil {
		return models.QualityReport{}, fmt.Errorf("quality query: %w", err)
	}
	if len(rows) == 0 {
		return models.QualityReport{}, fmt.Errorf("quality query returned no rows")
	}

	return parseQualityReport(rows[0])
}

// parseQualityReport validates the projection before coercing. The counts
// are required; min/max/avg are NULL on an empty table and default to zero.
func parseQualityReport(row models.Row) (models.QualityReport, error) {
	var report models.QualityReport

	total, ok := row.Int("total_rows")
	if !ok {
		return report, fmt.Errorf("quality projection missing total_rows")
	}
	zeroOrNull, ok := row.Int("zero_or_null_count")
	if !ok {
		return report, fmt.Errorf("quality projection missing zero_or_null_count")
	}

	report.TotalRows = total
	report.NullOrZeroCount = zeroOrNull
	report.MinAmount, _ = row.Float("min_amount")
	report.MaxAmount, _ = row.Float("max_amount")
	report.AvgAmount, _ = row.Float("avg_amount")
	return report, nil
}

// compareYears builds and runs the grouped-by-year comparison, persists an
// insight, and formats the report. A false return skips to the next table.
func (s *analysisService) compareYears(ctx context.Context, table models.CandidateTable, periods models.PeriodSpec) (string, bool) {
	query := buildComparisonQuery(table, periods)

	rows, err := s.executor.Run(ctx, query)
	if err != nil {
		s.logger.Warn("comparison query failed, skipping table",
			zap.String("table", table.Table), zap.Error(err))
		return "", false
	}
	if len(rows) < 2 {
		s.logger.Info("comparison returned fewer than two periods, skipping table",
			zap.String("table", table.Table), zap.Int("rows", len(rows)))
		return "", false
	}

	// Growth pairs the first two rows positionally, in the grouped query's
	// return order, not by matching the requested year values.
	first, okFirst := rows[0].Float("total_sales")
	second, okSecond := rows[1].Float("total_sales")
	if !okFirst || !okSecond {
		s.logger.Warn("comparison projection missing total_sales, skipping table",
			zap.String("table", table.Table))
		return "", false
	}

	growth := second - first
	growthPercent := 0.0
	if first != 0 {
		growthPercent = growth / first * 100
	}

	summary := fmt.Sprintf("Sales increased by %s from %s to %s (%s%% growth).",
		s.money(growth), periods.Years[0], periods.Years[1], percent(growthPercent))
	s.saveInsight(ctx, summary, query)

	return s.buildComparisonReport(periods, first, second, growth, growthPercent), true
}

// saveInsight persists the summary and the exact SQL behind it. A write
// failure is logged and swallowed; the analysis text is already computed.
func (s *analysisService) saveInsight(ctx context.Context, summary, query string) {
	if s.insights == nil {
		return
	}
	insight := &models.Insight{Summary: summary, SourceQuery: query}
	id, err := s.insights.Save(ctx, insight)
	if err != nil {
		s.logger.Error("failed to persist insight", zap.Error(err))
		return
	}
	s.logger.Info("insight saved", zap.Int("id", id), zap.String("summary", summary))
}

// grandTotal computes the single-aggregate fallback when fewer than two
// years were requested. No insight is written on this path.
func (s *analysisService) grandTotal(ctx context.Context, table models.CandidateTable) (string, bool) {
	query := fmt.Sprintf("SELECT SUM(%s) as total_sales FROM %s.%s",
		table.AmountColumn, table.Schema, table.Table)

	rows, err := s.executor.Run(ctx, query)
	if err != nil {
		s.logger.Warn("grand total query failed, skipping table",
			zap.String("table", table.Table), zap.Error(err))
		return "", false
	}
	if len(rows) == 0 {
		return "", false
	}

	total, ok := rows[0].Float("total_sales")
	if !ok {
		// SUM over an empty or all-NULL column is NULL: nothing to report.
		s.logger.Info("grand total is null, skipping table", zap.String("table", table.Table))
		return "", false
	}

	return fmt.Sprintf("Total sales from %s.%s: %s\n\n%s",
		table.Schema, table.Table, s.money(total), grandTotalDisclaimer), true
}

// buildComparisonQuery assembles the grouped-by-year query, filtered to the
// requested years, with optional OR-combined month-range conditions.
func buildComparisonQuery(table models.CandidateTable, periods models.PeriodSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"SELECT EXTRACT(YEAR FROM %s) as year, SUM(%s) as total_sales FROM %s.%s WHERE EXTRACT(YEAR FROM %s) IN (%s)",
		table.DateColumn, table.AmountColumn, table.Schema, table.Table,
		table.DateColumn, strings.Join(periods.Years, ", "))

	if conditions := monthRangeConditions(table.DateColumn, periods.MonthRanges); len(conditions) > 0 {
		b.WriteString(" AND (" + strings.Join(conditions, " OR ") + ")")
	}

	fmt.Fprintf(&b, " GROUP BY EXTRACT(YEAR FROM %s) ORDER BY year", table.DateColumn)
	return b.String()
}

// monthRangeConditions turns "may-july" style ranges into month BETWEEN
// filters. Single-month matches carry no range and produce no condition.
// The boundary dates parse against a fixed anchor year; only the month
// number survives the EXTRACT.
func monthRangeConditions(dateColumn string, ranges []string) []string {
	var conditions []string
	for _, r := range ranges {
		months := strings.Split(r, "-")
		if len(months) != 2 {
			continue
		}
		conditions = append(conditions, fmt.Sprintf(
			"(EXTRACT(MONTH FROM %s) BETWEEN EXTRACT(MONTH FROM DATE '%s 1, 2024') AND EXTRACT(MONTH FROM DATE '%s 1, 2024'))",
			dateColumn, strings.TrimSpace(months[0]), strings.TrimSpace(months[1])))
	}
	return conditions
}

// buildComparisonReport formats the two-period report: both totals, growth,
// percentage, commentary, and the prototype disclaimer.
func (s *analysisService) buildComparisonReport(periods models.PeriodSpec, first, second, growth, growthPercent float64) string {
	headerLabel := "yearly"
	lineLabel := "Year"
	summaryLabel := "the year"
	if len(periods.MonthRanges) > 0 {
		headerLabel = periods.MonthRanges[0]
		lineLabel = periods.MonthRanges[0]
		summaryLabel = periods.MonthRanges[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is your %s sales comparison for %s and %s:\n\n",
		headerLabel, periods.Years[0], periods.Years[1])
	fmt.Fprintf(&b, "%s %s total sales: %s\n", lineLabel, periods.Years[0], s.money(first))
	fmt.Fprintf(&b, "%s %s total sales: %s\n\n", lineLabel, periods.Years[1], s.money(second))
	b.WriteString("Insights:\n\n")
	fmt.Fprintf(&b, "Sales increased by %s from %s to %s.\n",
		s.money(growth), periods.Years[0], periods.Years[1])
	fmt.Fprintf(&b, "This is a year-over-year growth of about %s%% for the same period.\n", percent(growthPercent))
	b.WriteString("This positive trend suggests improvements, but I recommend investigating the drivers (products, regions, or customers) and checking for one-off, seasonal, or repeatable factors.\n\n")
	fmt.Fprintf(&b, "Owner's Summary: Your sales for %s increased nearly %s%% in %s compared to the same period in %s. If you want a breakdown by brand, city, or customer, just let me know.\n\n",
		summaryLabel, percent(growthPercent), periods.Years[1], periods.Years[0])
	b.WriteString(comparisonDisclaimer)
	return b.String()
}

// money formats an amount with English digit grouping and two decimals.
func (s *analysisService) money(v float64) string {
	return s.printer.Sprintf("%.2f", v)
}

// percent formats a growth percentage with one decimal and no grouping.
func percent(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
