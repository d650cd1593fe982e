package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/llm"
	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/prompts"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

// MaxDiscoveryIterations bounds the refinement loop. A reasoning capability
// that never stabilizes still terminates here.
const MaxDiscoveryIterations = 20

// discoveryTableMarkers is the lexical pre-filter: only tables whose name
// contains one of these substrings are ever classified. This bounds the
// search before any per-table work.
var discoveryTableMarkers = []string{"sale", "transaction", "order"}

// DiscoveryService narrows a schema snapshot down to the best set of
// sales-shaped tables with validated date and amount columns.
type DiscoveryService interface {
	// Discover runs the iterative refinement loop against an immutable
	// snapshot. The returned set may be empty; that is a valid terminal
	// state, not a failure.
	Discover(ctx context.Context, snapshot models.SchemaSnapshot, intent string) models.DiscoveryResult
}

type discoveryService struct {
	catalog    warehouse.Catalog
	classifier ColumnClassifier
	client     llm.Client
	logger     *zap.Logger
}

// NewDiscoveryService creates a discovery service. The catalog serves column
// lookups; the client drives the per-iteration schema reasoning pass.
func NewDiscoveryService(catalog warehouse.Catalog, classifier ColumnClassifier, client llm.Client, logger *zap.Logger) DiscoveryService {
	return &discoveryService{
		catalog:    catalog,
		classifier: classifier,
		client:     client,
		logger:     logger.Named("discovery"),
	}
}

var _ DiscoveryService = (*discoveryService)(nil)

func (s *discoveryService) Discover(ctx context.Context, snapshot models.SchemaSnapshot, intent string) models.DiscoveryResult {
	// The pre-filter depends only on the immutable snapshot, so it is
	// computed once. With zero candidates no iteration can ever produce a
	// non-empty set; the run ends after this single pass without a
	// reasoning call or a column fetch.
	candidates := prefilterTables(snapshot)
	if len(candidates) == 0 {
		s.logger.Info("no tables matched the sales pre-filter",
			zap.Int("tables_in_snapshot", snapshot.TableCount()))
		return models.DiscoveryResult{
			Tables:     []models.CandidateTable{},
			Iterations: 1,
			Converged:  false,
		}
	}

	s.logger.Info("starting discovery",
		zap.Int("tables_in_snapshot", snapshot.TableCount()),
		zap.Int("prefiltered_candidates", len(candidates)))

	state := models.DiscoveryState{}
	converged := false
	var lastEvaluations []models.TableEvaluation

	for state.Iteration < MaxDiscoveryIterations {
		state.Iteration++

		// Schema-level reasoning over the entire snapshot with the running
		// intent: the raw user query first, the previous iteration's output
		// thereafter. A failed pass keeps the previous reasoning and the
		// iteration still classifies.
		runningIntent := intent
		if state.PriorReasoning != "" {
			runningIntent = state.PriorReasoning
		}
		reasoning, err := s.client.Ask(ctx, prompts.BuildSchemaAnalysisPrompt(snapshot, runningIntent))
		if err != nil {
			s.logger.Warn("schema reasoning pass failed",
				zap.Int("iteration", state.Iteration),
				zap.Error(err))
		} else {
			state.PriorReasoning = reasoning
		}

		// Per-table classification runs against the original intent, not the
		// evolving reasoning string.
		var salesTables []models.CandidateTable
		evaluations := make([]models.TableEvaluation, 0, len(candidates))
		for _, ref := range candidates {
			evaluation := s.evaluateTable(ctx, ref, intent)
			evaluations = append(evaluations, evaluation)
			if evaluation.Accepted() {
				salesTables = append(salesTables, *evaluation.Candidate)
			}
		}
		lastEvaluations = evaluations

		s.logger.Debug("iteration finished",
			zap.Int("iteration", state.Iteration),
			zap.Int("valid_tables", len(salesTables)),
			zap.Int("best_so_far", len(state.BestSet)))

		// Update rule: a non-empty strictly larger set replaces the best.
		// Convergence rule: a repeat of the best set's size stops the loop.
		// The rules are exclusive per iteration, so convergence takes a
		// minimum of two passes.
		if len(salesTables) > 0 && (len(state.BestSet) == 0 || len(salesTables) > len(state.BestSet)) {
			state.BestSet = salesTables
		} else if len(state.BestSet) > 0 && len(salesTables) == len(state.BestSet) {
			converged = true
			break
		}
	}

	tables := state.BestSet
	if tables == nil {
		tables = []models.CandidateTable{}
	}

	s.logger.Info("discovery finished",
		zap.Int("iterations", state.Iteration),
		zap.Bool("converged", converged),
		zap.Int("tables", len(tables)))

	return models.DiscoveryResult{
		Tables:      tables,
		Iterations:  state.Iteration,
		Converged:   converged,
		Evaluations: lastEvaluations,
	}
}

// evaluateTable fetches a candidate's columns and classifies them. Failures
// reject the table for this iteration only; nothing here aborts the loop.
func (s *discoveryService) evaluateTable(ctx context.Context, ref models.TableRef, intent string) models.TableEvaluation {
	evaluation := models.TableEvaluation{Schema: ref.Schema, Table: ref.Table}

	columns, err := s.catalog.DescribeTable(ctx, ref.Schema, ref.Table)
	if err != nil {
		s.logger.Warn("table description failed, skipping",
			zap.String("schema", ref.Schema),
			zap.String("table", ref.Table),
			zap.Error(err))
		evaluation.SkipReason = models.SkipDescribeFailed
		evaluation.Detail = err.Error()
		return evaluation
	}
	if len(columns) == 0 {
		evaluation.SkipReason = models.SkipNoColumns
		return evaluation
	}

	classification := s.classifier.Classify(ctx, columns, intent)
	if classification.DateColumn == nil {
		evaluation.SkipReason = models.SkipNoDateColumn
		return evaluation
	}
	if classification.AmountColumn == nil {
		evaluation.SkipReason = models.SkipNoAmountColumn
		return evaluation
	}

	evaluation.Candidate = &models.CandidateTable{
		Schema:       ref.Schema,
		Table:        ref.Table,
		DateColumn:   *classification.DateColumn,
		AmountColumn: *classification.AmountColumn,
	}
	return evaluation
}

// prefilterTables returns the snapshot's tables whose names carry a sales
// marker, in snapshot order.
func prefilterTables(snapshot models.SchemaSnapshot) []models.TableRef {
	var refs []models.TableRef
	for _, schema := range snapshot.Schemas {
		for _, table := range schema.Tables {
			lower := strings.ToLower(table)
			for _, marker := range discoveryTableMarkers {
				if strings.Contains(lower, marker) {
					refs = append(refs, models.TableRef{Schema: schema.Schema, Table: table})
					break
				}
			}
		}
	}
	return refs
}
