package sql

import (
	"errors"
	"testing"
)

func TestValidateAndNormalize_ValidQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select without semicolon",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon stripped",
			input:    "SELECT SUM(total_amount) as total_sales FROM public.sales;",
			expected: "SELECT SUM(total_amount) as total_sales FROM public.sales",
		},
		{
			name:     "trailing semicolon and whitespace",
			input:    "SELECT COUNT(*) FROM sales;  ",
			expected: "SELECT COUNT(*) FROM sales",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  SELECT 1  ",
			expected: "SELECT 1",
		},
		{
			name:     "semicolon inside single quoted string",
			input:    "SELECT * FROM sales WHERE region = 'north;west'",
			expected: "SELECT * FROM sales WHERE region = 'north;west'",
		},
		{
			name:     "semicolon inside double quoted identifier",
			input:    `SELECT * FROM "sales;2024"`,
			expected: `SELECT * FROM "sales;2024"`,
		},
		{
			name:     "SQL standard escaped single quote",
			input:    "SELECT * FROM customers WHERE name = 'O''Brien'",
			expected: "SELECT * FROM customers WHERE name = 'O''Brien'",
		},
		{
			name: "multi-line grouped query",
			input: "SELECT EXTRACT(YEAR FROM sale_date) as year, SUM(total_amount) as total_sales\n" +
				"FROM public.sales\nGROUP BY EXTRACT(YEAR FROM sale_date)\nORDER BY year;",
			expected: "SELECT EXTRACT(YEAR FROM sale_date) as year, SUM(total_amount) as total_sales\n" +
				"FROM public.sales\nGROUP BY EXTRACT(YEAR FROM sale_date)\nORDER BY year",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if result.Error != nil {
				t.Fatalf("unexpected error: %v", result.Error)
			}
			if result.NormalizedSQL != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result.NormalizedSQL)
			}
		})
	}
}

func TestValidateAndNormalize_MultipleStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "two selects",
			input: "SELECT 1; SELECT 2",
		},
		{
			name:  "select then drop",
			input: "SELECT * FROM sales; DROP TABLE sales",
		},
		{
			name:  "stacked with trailing semicolon",
			input: "SELECT 1; DELETE FROM sales;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if !errors.Is(result.Error, ErrMultipleStatements) {
				t.Errorf("expected ErrMultipleStatements, got %v", result.Error)
			}
		})
	}
}

func TestValidateReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "select allowed",
			input: "SELECT COUNT(*) as total_rows FROM public.sales",
		},
		{
			name:  "lowercase select allowed",
			input: "select 1",
		},
		{
			name:  "cte allowed",
			input: "WITH yearly AS (SELECT 1) SELECT * FROM yearly",
		},
		{
			name:    "update rejected",
			input:   "UPDATE sales SET total_amount = 0",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "delete rejected",
			input:   "DELETE FROM sales",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "insert rejected",
			input:   "INSERT INTO sales VALUES (1)",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "ddl rejected",
			input:   "DROP TABLE sales",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "stacked statements rejected first",
			input:   "SELECT 1; DROP TABLE sales",
			wantErr: ErrMultipleStatements,
		},
		{
			name:  "empty input passes through",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateReadOnly(tt.input)
			if tt.wantErr == nil {
				if result.Error != nil {
					t.Errorf("unexpected error: %v", result.Error)
				}
				return
			}
			if !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, result.Error)
			}
		})
	}
}
