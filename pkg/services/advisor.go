package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

// AdvisorService is the full question-to-answer pipeline: snapshot the
// warehouse schema, extract periods from the question, discover candidate
// sales tables, and analyze them. It always produces an answer string.
type AdvisorService interface {
	Answer(ctx context.Context, query string) string
}

type advisorService struct {
	catalog   warehouse.Catalog
	discovery DiscoveryService
	analysis  AnalysisService
	logger    *zap.Logger
}

func NewAdvisorService(catalog warehouse.Catalog, discovery DiscoveryService, analysis AnalysisService, logger *zap.Logger) AdvisorService {
	return &advisorService{
		catalog:   catalog,
		discovery: discovery,
		analysis:  analysis,
		logger:    logger.Named("advisor"),
	}
}

var _ AdvisorService = (*advisorService)(nil)

func (s *advisorService) Answer(ctx context.Context, query string) string {
	snapshot, err := s.catalog.ListSchemasAndTables(ctx)
	if err != nil {
		// An unreachable warehouse degrades to an empty snapshot; discovery
		// then short-circuits and analysis returns the fallback message.
		s.logger.Warn("failed to snapshot warehouse schema", zap.Error(err))
		snapshot = models.SchemaSnapshot{}
	}

	periods := ExtractPeriods(query)
	s.logger.Debug("extracted periods",
		zap.Strings("years", periods.Years),
		zap.Strings("month_ranges", periods.MonthRanges))

	result := s.discovery.Discover(ctx, snapshot, query)
	s.logger.Info("discovery finished",
		zap.Int("iterations", result.Iterations),
		zap.Bool("converged", result.Converged),
		zap.Int("tables", len(result.Tables)))

	return s.analysis.Analyze(ctx, result.Tables, periods)
}
