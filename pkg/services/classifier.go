package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/llm"
	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/prompts"
)

// Declared types eligible for each axis, lowercased. Exact matches only:
// "timestamp with time zone" is deliberately absent from the date set.
var (
	dateColumnTypes = map[string]bool{
		"timestamp":                   true,
		"date":                        true,
		"timestamp without time zone": true,
	}
	amountColumnTypes = map[string]bool{
		"double precision": true,
		"numeric":          true,
		"decimal":          true,
		"float":            true,
		"int":              true,
		"integer":          true,
	}
)

// amountNameMarkers are the lexical markers a numeric column's name must
// carry to be eligible as the sales amount axis.
var amountNameMarkers = []string{"sale", "amount", "total", "price"}

// ColumnClassifier picks the date axis and amount axis for one table. The
// reasoning capability is consulted for a suggestion, but the type and name
// gates are authoritative: a column the gates reject is never chosen, no
// matter what the advisory says.
type ColumnClassifier interface {
	Classify(ctx context.Context, columns []models.ColumnDescriptor, intent string) models.ColumnClassification
}

type columnClassifier struct {
	client llm.Client
	logger *zap.Logger
}

// NewColumnClassifier creates a classifier backed by the given reasoning
// client. A nil client skips the advisory and classifies on gates alone.
func NewColumnClassifier(client llm.Client, logger *zap.Logger) ColumnClassifier {
	return &columnClassifier{
		client: client,
		logger: logger.Named("classifier"),
	}
}

var _ ColumnClassifier = (*columnClassifier)(nil)

// columnAdvisory is the JSON shape requested from the reasoning capability.
type columnAdvisory struct {
	DateColumn   *string `json:"date_column"`
	AmountColumn *string `json:"amount_column"`
	Reasoning    string  `json:"reasoning"`
}

func (c *columnClassifier) Classify(ctx context.Context, columns []models.ColumnDescriptor, intent string) models.ColumnClassification {
	result := models.ColumnClassification{}

	if c.client != nil {
		advisory, err := c.client.Ask(ctx, prompts.BuildColumnAdvisoryPrompt(columns, intent))
		if err != nil {
			c.logger.Debug("column advisory unavailable", zap.Error(err))
		} else {
			result.Advisory = advisory
		}
	}

	// Gates. Among multiple eligible columns the first in declaration order
	// wins, keeping classification deterministic across calls.
	for _, col := range columns {
		sqlType := strings.ToLower(col.SQLType)

		if result.DateColumn == nil && dateColumnTypes[sqlType] {
			name := col.Name
			result.DateColumn = &name
			continue
		}

		if result.AmountColumn == nil && amountColumnTypes[sqlType] && hasAmountMarker(col.Name) {
			name := col.Name
			result.AmountColumn = &name
		}
	}

	c.compareAdvisory(result)

	return result
}

// compareAdvisory logs when the reasoning capability's suggestion differs
// from what the gates chose. Malformed advisories are a non-event: the gates
// already decided.
func (c *columnClassifier) compareAdvisory(result models.ColumnClassification) {
	if result.Advisory == "" {
		return
	}

	advisory, err := llm.ParseJSONResponse[columnAdvisory](result.Advisory)
	if err != nil {
		c.logger.Debug("column advisory not parseable", zap.Error(err))
		return
	}

	if disagrees(advisory.DateColumn, result.DateColumn) {
		c.logger.Debug("advisory disagrees on date column",
			zap.Stringp("advisory", advisory.DateColumn),
			zap.Stringp("gate", result.DateColumn))
	}
	if disagrees(advisory.AmountColumn, result.AmountColumn) {
		c.logger.Debug("advisory disagrees on amount column",
			zap.Stringp("advisory", advisory.AmountColumn),
			zap.Stringp("gate", result.AmountColumn))
	}
}

func disagrees(advisory, gate *string) bool {
	if advisory == nil || gate == nil {
		return (advisory == nil) != (gate == nil)
	}
	return *advisory != *gate
}

func hasAmountMarker(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range amountNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
