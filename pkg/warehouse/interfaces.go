// Package warehouse provides read-only access to the customer's sales
// warehouse: catalog walks over information_schema and a validated query
// runner. The engine never writes here; insights and chat history live in
// the application database instead.
package warehouse

import (
	"context"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// Catalog lists what exists in the warehouse. Implementations must exclude
// system/catalog schemas by name.
type Catalog interface {
	// ListSchemasAndTables returns every user schema with its tables, in
	// stable (schema, table) order.
	ListSchemasAndTables(ctx context.Context) (models.SchemaSnapshot, error)

	// DescribeTable returns the table's columns in declaration order.
	DescribeTable(ctx context.Context, schema, table string) ([]models.ColumnDescriptor, error)
}

// Executor runs one generated SELECT and returns its rows with numeric
// values normalized to float64.
type Executor interface {
	Run(ctx context.Context, sqlQuery string) ([]models.Row, error)
}
