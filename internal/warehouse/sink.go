package warehouse

import (
	"context"

	"gorm.io/gorm/clause"

	"call-analytics-exporter/internal/model"
)

// upsertBatchSize bounds rows per INSERT so statements stay tractable.
const upsertBatchSize = 200

// Natural keys and mutable value columns per table. Key columns, id,
// week_start_date and created_at are never overwritten on conflict; the
// rollup table is the one exception that refreshes created_at, because the
// source document owns that timestamp.
var (
	criteriaKeyColumns   = []string{"metric_date", "client_id", "subdomain", "administrator", "call_direction", "source", "call_type", "criterion_name"}
	criteriaValueColumns = []string{"total_score", "scored_calls_count", "avg_score"}
	summaryKeyColumns    = []string{"metric_date", "client_id", "subdomain", "administrator", "call_direction", "source", "call_type"}
	summaryValueColumns  = []string{"total_calls", "converted_calls", "conversion_rate", "total_duration_seconds", "avg_duration_seconds", "total_overall_score", "scored_calls_count", "fg_percent", "total_processing_speed_minutes", "calls_with_processing_speed_count", "avg_processing_speed_minutes"}
	detailsKeyColumns    = []string{"call_mongo_id"}
	detailsValueColumns  = []string{"metric_date", "administrator", "transcript_url", "recording_url", "recommendations_text", "client_id", "subdomain", "call_id", "call_type", "is_effective", "matched_criteria"}
	rollupKeyColumns     = []string{"client_id", "start_date", "end_date", "period_type"}
	rollupValueColumns   = []string{"summary_points", "overall_summary", "created_at"}
)

func conflictClause(keyColumns, valueColumns []string) clause.OnConflict {
	columns := make([]clause.Column, 0, len(keyColumns))
	for _, name := range keyColumns {
		columns = append(columns, clause.Column{Name: name})
	}
	return clause.OnConflict{
		Columns:   columns,
		DoUpdates: clause.AssignmentColumns(valueColumns),
	}
}

// UpsertCriteriaMetrics writes one day's criteria aggregate rows.
func (s *Sink) UpsertCriteriaMetrics(ctx context.Context, rows []model.CriteriaMetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(conflictClause(criteriaKeyColumns, criteriaValueColumns)).
		CreateInBatches(rows, upsertBatchSize).Error
}

// UpsertDailySummaries writes one day's summary rows.
func (s *Sink) UpsertDailySummaries(ctx context.Context, rows []model.DailySummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(conflictClause(summaryKeyColumns, summaryValueColumns)).
		CreateInBatches(rows, upsertBatchSize).Error
}

// UpsertCallDetails writes the whole range's detail rows in one batched pass.
func (s *Sink) UpsertCallDetails(ctx context.Context, rows []model.CallDetailRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(conflictClause(detailsKeyColumns, detailsValueColumns)).
		CreateInBatches(rows, upsertBatchSize).Error
}

// UpsertRecommendationAnalyses writes the imported rollup rows.
func (s *Sink) UpsertRecommendationAnalyses(ctx context.Context, rows []model.RecommendationAnalysisRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(conflictClause(rollupKeyColumns, rollupValueColumns)).
		CreateInBatches(rows, upsertBatchSize).Error
}
