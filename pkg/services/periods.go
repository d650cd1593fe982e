package services

import (
	"regexp"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

var (
	// Four-digit tokens starting "20". Order of appearance matters and
	// duplicates are kept: downstream growth pairing is positional.
	yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

	// A full English month name, optionally followed by "-" and a second
	// month name. The raw matched text is kept so generated SQL and report
	// headers echo what the user wrote.
	monthRangePattern = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)(?:-(?:january|february|march|april|may|june|july|august|september|october|november|december))?\b`)
)

// ExtractPeriods parses free text for year tokens and month-range tokens.
// English month names only.
func ExtractPeriods(text string) models.PeriodSpec {
	return models.PeriodSpec{
		Years:       yearPattern.FindAllString(text, -1),
		MonthRanges: monthRangePattern.FindAllString(text, -1),
	}
}
