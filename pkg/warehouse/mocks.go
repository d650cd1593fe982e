package warehouse

import (
	"context"
	"sync"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// MockCatalog is a configurable mock for testing discovery.
type MockCatalog struct {
	// ListSchemasAndTablesFunc is called when ListSchemasAndTables is
	// invoked. If nil, returns an empty snapshot.
	ListSchemasAndTablesFunc func(ctx context.Context) (models.SchemaSnapshot, error)

	// DescribeTableFunc is called when DescribeTable is invoked.
	// If nil, returns no columns.
	DescribeTableFunc func(ctx context.Context, schema, table string) ([]models.ColumnDescriptor, error)

	// Call tracking for verification.
	ListCalls     int
	DescribeCalls int
	Described     []models.TableRef
}

// NewMockCatalog creates a new mock catalog.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{}
}

// ListSchemasAndTables implements Catalog.
func (m *MockCatalog) ListSchemasAndTables(ctx context.Context) (models.SchemaSnapshot, error) {
	m.ListCalls++
	if m.ListSchemasAndTablesFunc != nil {
		return m.ListSchemasAndTablesFunc(ctx)
	}
	return models.SchemaSnapshot{}, nil
}

// DescribeTable implements Catalog.
func (m *MockCatalog) DescribeTable(ctx context.Context, schema, table string) ([]models.ColumnDescriptor, error) {
	m.DescribeCalls++
	m.Described = append(m.Described, models.TableRef{Schema: schema, Table: table})
	if m.DescribeTableFunc != nil {
		return m.DescribeTableFunc(ctx, schema, table)
	}
	return nil, nil
}

// Reset clears call tracking.
func (m *MockCatalog) Reset() {
	m.ListCalls = 0
	m.DescribeCalls = 0
	m.Described = nil
}

// Ensure MockCatalog implements Catalog at compile time.
var _ Catalog = (*MockCatalog)(nil)

// MockExecutor is a configurable mock for testing analysis. Run is safe for
// concurrent use: the fraud scan pool calls it from multiple goroutines.
type MockExecutor struct {
	// RunFunc is called when Run is invoked. If nil, returns no rows.
	RunFunc func(ctx context.Context, sqlQuery string) ([]models.Row, error)

	// Call tracking for verification.
	RunCalls int
	Queries  []string

	mu sync.Mutex
}

// NewMockExecutor creates a new mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Run implements Executor.
func (m *MockExecutor) Run(ctx context.Context, sqlQuery string) ([]models.Row, error) {
	m.mu.Lock()
	m.RunCalls++
	m.Queries = append(m.Queries, sqlQuery)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, sqlQuery)
	}
	return nil, nil
}

// Reset clears call tracking.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalls = 0
	m.Queries = nil
}

// Ensure MockExecutor implements Executor at compile time.
var _ Executor = (*MockExecutor)(nil)
