package aggregate

import (
	"call-analytics-exporter/internal/model"
)

// defaultPeriodType is assumed for rollup documents written before the
// period_type field existed.
const defaultPeriodType = "weekly"

// RecommendationRollups maps raw rollup documents onto sink rows. Documents
// without a client id are dropped: the sink key requires one.
func RecommendationRollups(docs []model.RecommendationAnalysisDoc) []model.RecommendationAnalysisRow {
	rows := make([]model.RecommendationAnalysisRow, 0, len(docs))
	for _, d := range docs {
		if d.ClientID == "" {
			continue
		}
		periodType := d.PeriodType
		if periodType == "" {
			periodType = defaultPeriodType
		}
		rows = append(rows, model.RecommendationAnalysisRow{
			ClientID:       d.ClientID,
			StartDate:      d.StartDate,
			EndDate:        d.EndDate,
			PeriodType:     periodType,
			SummaryPoints:  d.AnalysisData.SummaryPoints,
			OverallSummary: d.AnalysisData.OverallSummary,
			CreatedAt:      d.CreatedAt,
		})
	}
	return rows
}
