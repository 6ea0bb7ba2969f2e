package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-analytics-exporter/internal/model"
)

func TestRecommendationRollupsDefaultsPeriodType(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	docs := []model.RecommendationAnalysisDoc{
		{
			ClientID:  "clinic-1",
			StartDate: start,
			EndDate:   end,
			AnalysisData: model.AnalysisData{
				SummaryPoints:  []string{"чаще предлагать запись"},
				OverallSummary: "в целом хорошо",
			},
			CreatedAt: &created,
		},
		{
			ClientID:   "clinic-2",
			StartDate:  start,
			EndDate:    end.AddDate(0, 0, 23),
			PeriodType: "monthly",
		},
	}

	rows := RecommendationRollups(docs)
	require.Len(t, rows, 2)

	assert.Equal(t, "weekly", rows[0].PeriodType)
	assert.Equal(t, []string{"чаще предлагать запись"}, []string(rows[0].SummaryPoints))
	assert.Equal(t, "в целом хорошо", rows[0].OverallSummary)
	require.NotNil(t, rows[0].CreatedAt)
	assert.Equal(t, created, *rows[0].CreatedAt)

	assert.Equal(t, "monthly", rows[1].PeriodType)
}

func TestRecommendationRollupsDropsDocsWithoutClient(t *testing.T) {
	docs := []model.RecommendationAnalysisDoc{
		{ClientID: ""},
		{ClientID: "clinic-1"},
	}

	rows := RecommendationRollups(docs)
	require.Len(t, rows, 1)
	assert.Equal(t, "clinic-1", rows[0].ClientID)
}
