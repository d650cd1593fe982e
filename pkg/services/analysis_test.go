package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

func candidateTable() models.CandidateTable {
	return models.CandidateTable{
		Schema:       "public",
		Table:        "sales_2024",
		DateColumn:   "sale_date",
		AmountColumn: "total_amount",
	}
}

func cleanQualityRow() models.Row {
	return models.Row{
		"total_rows":         int64(120),
		"zero_or_null_count": int64(0),
		"min_amount":         12.5,
		"max_amount":         980.0,
		"avg_amount":         401.3,
	}
}

func yearRows(first, second float64) []models.Row {
	return []models.Row{
		{"year": 2023.0, "total_sales": first},
		{"year": 2024.0, "total_sales": second},
	}
}

// routeQueries dispatches the executor mock on query shape: the quality
// aggregate, the grouped year comparison, or the grand total.
func routeQueries(quality models.Row, comparison []models.Row, total models.Row) func(ctx context.Context, q string) ([]models.Row, error) {
	return func(ctx context.Context, q string) ([]models.Row, error) {
		switch {
		case strings.Contains(q, "COUNT(*)"):
			return []models.Row{quality}, nil
		case strings.Contains(q, "EXTRACT(YEAR"):
			return comparison, nil
		case strings.HasPrefix(q, "SELECT SUM("):
			return []models.Row{total}, nil
		}
		return nil, fmt.Errorf("unexpected query: %s", q)
	}
}

func twoYears() models.PeriodSpec {
	return models.PeriodSpec{Years: []string{"2023", "2024"}}
}

func TestAnalyze_NoCandidateTables(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	report := svc.Analyze(context.Background(), nil, twoYears())

	assert.Equal(t, NoSuitableColumnsMessage, report)
	assert.Equal(t, 0, executor.RunCalls)
}

func TestAnalyze_YearComparison(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)
	insights := &mockInsightRepository{}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.Contains(t, report, "Here is your yearly sales comparison for 2023 and 2024:")
	assert.Contains(t, report, "Year 2023 total sales: 1,000.00")
	assert.Contains(t, report, "Year 2024 total sales: 1,200.00")
	assert.Contains(t, report, "Sales increased by 200.00 from 2023 to 2024.")
	assert.Contains(t, report, "growth of about 20.0%")
	assert.Contains(t, report, "Note: This response is based on early, incomplete prototype data")

	wantQuery := "SELECT EXTRACT(YEAR FROM sale_date) as year, SUM(total_amount) as total_sales " +
		"FROM public.sales_2024 WHERE EXTRACT(YEAR FROM sale_date) IN (2023, 2024) " +
		"GROUP BY EXTRACT(YEAR FROM sale_date) ORDER BY year"
	require.Equal(t, 2, executor.RunCalls)
	assert.Equal(t, wantQuery, executor.Queries[1])

	require.Equal(t, 1, insights.SaveCalls)
	require.Len(t, insights.saved, 1)
	assert.Equal(t, "Sales increased by 200.00 from 2023 to 2024 (20.0% growth).", insights.saved[0].Summary)
	assert.Equal(t, wantQuery, insights.saved[0].SourceQuery)
}

func TestAnalyze_ZeroBaseReportsZeroGrowthPercent(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(0, 500), nil)
	insights := &mockInsightRepository{}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.Contains(t, report, "Year 2023 total sales: 0.00")
	assert.Contains(t, report, "Sales increased by 500.00 from 2023 to 2024.")
	assert.Contains(t, report, "growth of about 0.0%")

	require.Len(t, insights.saved, 1)
	assert.Contains(t, insights.saved[0].Summary, "(0.0% growth).")
}

func TestAnalyze_QualityWarningPrefixesComparison(t *testing.T) {
	quality := cleanQualityRow()
	quality["zero_or_null_count"] = int64(3)
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(quality, yearRows(1000, 1200), nil)
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.True(t, strings.HasPrefix(report,
		"Warning: Found 3 records with zero or missing sales amounts.\n\n"),
		"report should lead with the data quality warning, got: %q", report)
	assert.Contains(t, report, "Here is your yearly sales comparison")
}

func TestAnalyze_QualityWarningPrefixesGrandTotal(t *testing.T) {
	quality := cleanQualityRow()
	quality["zero_or_null_count"] = int64(2)
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(quality, nil, models.Row{"total_sales": 300.0})
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	report := svc.Analyze(context.Background(),
		[]models.CandidateTable{candidateTable()},
		models.PeriodSpec{Years: []string{"2024"}})

	assert.True(t, strings.HasPrefix(report,
		"Warning: Found 2 records with zero or missing sales amounts.\n\n"))
	assert.Contains(t, report, "Total sales from public.sales_2024: 300.00")
}

func TestAnalyze_GrandTotalFallback(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), nil, models.Row{"total_sales": 5000.0})
	insights := &mockInsightRepository{}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, models.PeriodSpec{})

	assert.Contains(t, report, "Total sales from public.sales_2024: 5,000.00")
	assert.Contains(t, report, "Note: This analysis is based on prototype data")

	require.Equal(t, 2, executor.RunCalls)
	assert.Equal(t, "SELECT SUM(total_amount) as total_sales FROM public.sales_2024", executor.Queries[1])

	// Only period comparisons persist insights; the fallback never writes.
	assert.Equal(t, 0, insights.SaveCalls)
}

func TestAnalyze_GrandTotalNullSkipsTable(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), nil, models.Row{"total_sales": nil})
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, models.PeriodSpec{})

	assert.Equal(t, NoSuitableColumnsMessage, report)
}

func TestAnalyze_MonthRangeFilters(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	periods := models.PeriodSpec{
		Years:       []string{"2023", "2024"},
		MonthRanges: []string{"may-july", "may-july"},
	}
	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, periods)

	require.Equal(t, 2, executor.RunCalls)
	wantFilter := " AND (" +
		"(EXTRACT(MONTH FROM sale_date) BETWEEN EXTRACT(MONTH FROM DATE 'may 1, 2024') AND EXTRACT(MONTH FROM DATE 'july 1, 2024'))" +
		" OR " +
		"(EXTRACT(MONTH FROM sale_date) BETWEEN EXTRACT(MONTH FROM DATE 'may 1, 2024') AND EXTRACT(MONTH FROM DATE 'july 1, 2024'))" +
		")"
	assert.Contains(t, executor.Queries[1], wantFilter)

	assert.Contains(t, report, "Here is your may-july sales comparison for 2023 and 2024:")
	assert.Contains(t, report, "may-july 2023 total sales: 1,000.00")
	assert.Contains(t, report, "Your sales for may-july increased nearly 20.0% in 2024")
}

func TestAnalyze_SingleMonthTokenAddsNoFilter(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)
	svc := NewAnalysisService(executor, &mockInsightRepository{}, zap.NewNop())

	periods := models.PeriodSpec{
		Years:       []string{"2023", "2024"},
		MonthRanges: []string{"May"},
	}
	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, periods)

	// A bare month carries no range, so the year filter stands alone.
	require.Equal(t, 2, executor.RunCalls)
	assert.NotContains(t, executor.Queries[1], " AND (")
	assert.Contains(t, executor.Queries[1], "IN (2023, 2024) GROUP BY")

	// The report still labels periods with the month token.
	assert.Contains(t, report, "Here is your May sales comparison for 2023 and 2024:")
}

func TestAnalyze_FewerThanTwoPeriodRowsSkipsTable(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), []models.Row{{"year": 2024.0, "total_sales": 900.0}}, nil)
	insights := &mockInsightRepository{}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.Equal(t, NoSuitableColumnsMessage, report)
	assert.Equal(t, 0, insights.SaveCalls)
}

func TestAnalyze_QualityFailureTriesNextTable(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = func(ctx context.Context, q string) ([]models.Row, error) {
		if strings.Contains(q, "sales_a") {
			return nil, errors.New("relation is locked")
		}
		return routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)(ctx, q)
	}
	insights := &mockInsightRepository{}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	tables := []models.CandidateTable{
		{Schema: "public", Table: "sales_a", DateColumn: "sale_date", AmountColumn: "total_amount"},
		{Schema: "public", Table: "sales_b", DateColumn: "sale_date", AmountColumn: "total_amount"},
	}
	report := svc.Analyze(context.Background(), tables, twoYears())

	assert.Contains(t, report, "Here is your yearly sales comparison")
	require.Len(t, insights.saved, 1)
	assert.Contains(t, insights.saved[0].SourceQuery, "public.sales_b")
}

func TestAnalyze_InsightWriteFailureKeepsReport(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)
	insights := &mockInsightRepository{saveErr: errors.New("disk full")}
	svc := NewAnalysisService(executor, insights, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.Contains(t, report, "Here is your yearly sales comparison")
	assert.Equal(t, 1, insights.SaveCalls)
}

func TestAnalyze_NilInsightRepositorySkipsPersistence(t *testing.T) {
	executor := warehouse.NewMockExecutor()
	executor.RunFunc = routeQueries(cleanQualityRow(), yearRows(1000, 1200), nil)
	svc := NewAnalysisService(executor, nil, zap.NewNop())

	report := svc.Analyze(context.Background(), []models.CandidateTable{candidateTable()}, twoYears())

	assert.Contains(t, report, "Here is your yearly sales comparison")
}
