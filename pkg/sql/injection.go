package sql

import (
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"
)

// identPattern matches bare PostgreSQL identifiers. Anything else (quotes,
// spaces, punctuation) is rejected before it can reach generated SQL.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// IdentifierCheckResult describes an identifier that failed screening.
type IdentifierCheckResult struct {
	Identifier  string // which identifier failed (e.g. "table", "schema")
	Value       string // the value that was checked
	Reason      string // "invalid characters" or "sqli pattern"
	Fingerprint string // libinjection fingerprint when Reason is "sqli pattern"
}

// CheckIdentifier screens a caller-supplied identifier (schema, table or
// column name) before it is quoted into generated SQL. Names sourced from
// information_schema don't need this; names arriving over the API do.
//
// Returns nil if the identifier is clean.
//
// Example:
//
//	// Safe value
//	result := CheckIdentifier("table", "transactions")
//	// result == nil
//
//	// Injection attempt
//	result := CheckIdentifier("table", "t; DROP TABLE users--")
//	// result.Reason == "invalid characters"
func CheckIdentifier(identifier, value string) *IdentifierCheckResult {
	if !identPattern.MatchString(value) {
		return &IdentifierCheckResult{
			Identifier: identifier,
			Value:      value,
			Reason:     "invalid characters",
		}
	}

	// Belt and braces: a value can be charset-clean and still trip
	// libinjection (e.g. keywords arranged into an expression).
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &IdentifierCheckResult{
			Identifier:  identifier,
			Value:       value,
			Reason:      "sqli pattern",
			Fingerprint: string(fingerprint),
		}
	}

	return nil
}

// CheckIdentifiers screens a set of named identifiers and returns a result
// for each one that failed. Returns an empty slice when all are clean.
func CheckIdentifiers(idents map[string]string) []*IdentifierCheckResult {
	var results []*IdentifierCheckResult
	for name, value := range idents {
		if result := CheckIdentifier(name, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
