// Package prompts builds the prompt strings sent to the reasoning capability.
// Prompt text lives here, away from the services that send it, so tests can
// assert on content without running a discovery loop.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// BuildSchemaAnalysisPrompt creates the schema-level reasoning prompt for one
// discovery iteration. The intent is the raw user query on the first
// iteration and the previous iteration's reasoning output afterwards.
func BuildSchemaAnalysisPrompt(snapshot models.SchemaSnapshot, intent string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a database expert. Given the following schema information:\n")
	prompt.WriteString(FormatSnapshot(snapshot))
	prompt.WriteString(fmt.Sprintf("\nAnd the user query: %q\n", intent))
	prompt.WriteString("Suggest the most relevant tables and columns to answer the query. Explain your reasoning.\n")

	return prompt.String()
}

// BuildColumnAdvisoryPrompt creates the per-table column suggestion prompt.
// The response is advisory: the classifier's type and name gates make the
// actual choice. The JSON shape is requested so the advisory can be compared
// against the gate outcome.
func BuildColumnAdvisoryPrompt(columns []models.ColumnDescriptor, intent string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a database expert. Given the following table columns:\n")
	prompt.WriteString(FormatColumns(columns))
	prompt.WriteString(fmt.Sprintf("\nAnd the user query: %q\n\n", intent))
	prompt.WriteString("Please identify:\n")
	prompt.WriteString("1. The best column for dates (look for timestamp, date, or datetime types)\n")
	prompt.WriteString("2. The best column for sales amounts (look for numeric types with names containing 'sale', 'amount', 'total', or 'price')\n\n")
	prompt.WriteString("Respond in JSON with:\n")
	prompt.WriteString("- `date_column`: the chosen date column name, or null if none is suitable\n")
	prompt.WriteString("- `amount_column`: the chosen sales amount column name, or null if none is suitable\n")
	prompt.WriteString("- `reasoning`: brief explanation of the choices\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}

// FormatSnapshot renders the snapshot as a JSON object of schema name to
// table list. Built by hand so schema order survives (marshaling a map would
// randomize it and make iteration prompts unstable).
func FormatSnapshot(snapshot models.SchemaSnapshot) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, schema := range snapshot.Schemas {
		tables, _ := json.Marshal(schema.Tables)
		b.WriteString(fmt.Sprintf("  %q: %s", schema.Schema, tables))
		if i < len(snapshot.Schemas)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// FormatColumns renders column descriptors as a JSON array in declaration
// order.
func FormatColumns(columns []models.ColumnDescriptor) string {
	type columnJSON struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Nullable bool    `json:"nullable"`
		Default  *string `json:"default"`
	}

	out := make([]columnJSON, 0, len(columns))
	for _, col := range columns {
		out = append(out, columnJSON{
			Name:     col.Name,
			Type:     col.SQLType,
			Nullable: col.Nullable,
			Default:  col.Default,
		})
	}

	rendered, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(rendered)
}
