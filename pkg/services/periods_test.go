package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

func TestExtractPeriods(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		years       []string
		monthRanges []string
	}{
		{
			name:  "two years",
			text:  "Compare sales for 2023 and 2024",
			years: []string{"2023", "2024"},
		},
		{
			name:        "years with month ranges",
			text:        "compare may-july 2023 with may-july 2024",
			years:       []string{"2023", "2024"},
			monthRanges: []string{"may-july", "may-july"},
		},
		{
			name:        "single month",
			text:        "How did revenue look in May?",
			monthRanges: []string{"May"},
		},
		{
			name:  "duplicate years kept in order",
			text:  "2023 vs 2023",
			years: []string{"2023", "2023"},
		},
		{
			name:        "month case preserved",
			text:        "JANUARY-MARCH performance please",
			monthRanges: []string{"JANUARY-MARCH"},
		},
		{
			name: "no periods",
			text: "how are sales doing",
		},
		{
			name: "digits without year boundaries",
			text: "ticket 20235 opened back in 1999",
		},
		{
			name: "month inside a longer word",
			text: "Maybe we should look at marching orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods := ExtractPeriods(tt.text)

			if len(tt.years) == 0 {
				assert.Empty(t, periods.Years)
			} else {
				assert.Equal(t, tt.years, periods.Years)
			}
			if len(tt.monthRanges) == 0 {
				assert.Empty(t, periods.MonthRanges)
			} else {
				assert.Equal(t, tt.monthRanges, periods.MonthRanges)
			}
		})
	}
}

func TestPeriodSpec_WantsComparison(t *testing.T) {
	assert.False(t, models.PeriodSpec{}.WantsComparison())
	assert.False(t, models.PeriodSpec{Years: []string{"2024"}}.WantsComparison())
	assert.True(t, models.PeriodSpec{Years: []string{"2023", "2024"}}.WantsComparison())
	assert.True(t, models.PeriodSpec{Years: []string{"2022", "2023", "2024"}}.WantsComparison())
}
