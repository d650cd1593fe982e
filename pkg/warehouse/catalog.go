package warehouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/database"
	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// PostgresCatalog discovers schemas, tables and columns through
// information_schema.
type PostgresCatalog struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPostgresCatalog creates a catalog over the warehouse pool.
func NewPostgresCatalog(db *database.DB, logger *zap.Logger) *PostgresCatalog {
	return &PostgresCatalog{
		db:     db,
		logger: logger.Named("catalog"),
	}
}

// ListSchemasAndTables implements Catalog. Views are included on purpose:
// reporting warehouses frequently expose sales data only through views.
func (c *PostgresCatalog) ListSchemasAndTables(ctx context.Context) (models.SchemaSnapshot, error) {
	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		ORDER BY table_schema, table_name
	`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return models.SchemaSnapshot{}, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var snapshot models.SchemaSnapshot
	for rows.Next() {
		var schema, table string
		if err := rows.Scan(&schema, &table); err != nil {
			return models.SchemaSnapshot{}, fmt.Errorf("scan table: %w", err)
		}

		n := len(snapshot.Schemas)
		if n == 0 || snapshot.Schemas[n-1].Schema != schema {
			snapshot.Schemas = append(snapshot.Schemas, models.SchemaTables{Schema: schema})
			n++
		}
		snapshot.Schemas[n-1].Tables = append(snapshot.Schemas[n-1].Tables, table)
	}

	if err := rows.Err(); err != nil {
		return models.SchemaSnapshot{}, fmt.Errorf("iterate tables: %w", err)
	}

	c.logger.Debug("catalog snapshot fetched",
		zap.Int("schemas", len(snapshot.Schemas)),
		zap.Int("tables", snapshot.TableCount()))

	return snapshot, nil
}

// DescribeTable implements Catalog.
func (c *PostgresCatalog) DescribeTable(ctx context.Context, schema, table string) ([]models.ColumnDescriptor, error) {
	const query = `
		SELECT column_name, data_type, is_nullable = 'YES', column_default
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := c.db.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnDescriptor
	for rows.Next() {
		var col models.ColumnDescriptor
		if err := rows.Scan(&col.Name, &col.SQLType, &col.Nullable, &col.Default); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

// Ensure PostgresCatalog implements Catalog at compile time.
var _ Catalog = (*PostgresCatalog)(nil)
