package warehouse

import (
	"context"
	"fmt"

	"call-analytics-exporter/internal/model"
)

// tableMigration groups the idempotent DDL for one destination table. The
// statements run in order every startup; each one is safe to repeat.
type tableMigration struct {
	table      string
	statements []string
}

var tableMigrations = []tableMigration{
	{
		table: model.CriteriaMetricsTable,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS call_criteria_metrics (
				id SERIAL PRIMARY KEY,
				metric_date DATE NOT NULL,
				week_start_date DATE,
				client_id VARCHAR(255) NOT NULL,
				subdomain VARCHAR(255),
				administrator VARCHAR(255),
				call_direction VARCHAR(50),
				source VARCHAR(255),
				call_type VARCHAR(255),
				criterion_name VARCHAR(255) NOT NULL,
				total_score NUMERIC,
				scored_calls_count INTEGER,
				avg_score NUMERIC,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				UNIQUE (metric_date, client_id, subdomain, administrator, call_direction, source, call_type, criterion_name)
			);`,
			`CREATE INDEX IF NOT EXISTS idx_crit_metric_date ON call_criteria_metrics (metric_date);`,
			`CREATE INDEX IF NOT EXISTS idx_crit_client_id ON call_criteria_metrics (client_id);`,
			`CREATE INDEX IF NOT EXISTS idx_crit_call_type ON call_criteria_metrics (call_type);`,
			`CREATE INDEX IF NOT EXISTS idx_crit_criterion_name ON call_criteria_metrics (criterion_name);`,
		},
	},
	{
		table: model.DailySummaryTable,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS daily_summary_metrics (
				id SERIAL PRIMARY KEY,
				metric_date DATE NOT NULL,
				week_start_date DATE,
				client_id VARCHAR(255) NOT NULL,
				subdomain VARCHAR(255),
				administrator VARCHAR(255),
				call_direction VARCHAR(50),
				source VARCHAR(255),
				call_type VARCHAR(255),
				total_calls INTEGER,
				converted_calls INTEGER,
				conversion_rate NUMERIC,
				total_duration_seconds INTEGER,
				avg_duration_seconds NUMERIC,
				total_overall_score NUMERIC,
				scored_calls_count INTEGER,
				fg_percent NUMERIC,
				total_processing_speed_minutes NUMERIC,
				calls_with_processing_speed_count INTEGER,
				avg_processing_speed_minutes NUMERIC,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				UNIQUE (metric_date, client_id, subdomain, administrator, call_direction, source, call_type)
			);`,
			`CREATE INDEX IF NOT EXISTS idx_sum_metric_date ON daily_summary_metrics (metric_date);`,
			`CREATE INDEX IF NOT EXISTS idx_sum_client_id ON daily_summary_metrics (client_id);`,
			`CREATE INDEX IF NOT EXISTS idx_sum_call_type ON daily_summary_metrics (call_type);`,
		},
	},
	{
		table: model.CallDetailsTable,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS call_details (
				call_mongo_id TEXT PRIMARY KEY,
				metric_date DATE,
				administrator TEXT,
				transcript_url TEXT,
				recording_url TEXT,
				recommendations_text TEXT,
				client_id TEXT,
				subdomain TEXT,
				call_id TEXT,
				call_type TEXT,
				is_effective BOOLEAN,
				matched_criteria TEXT
			);`,
			`CREATE INDEX IF NOT EXISTS idx_details_metric_date ON call_details (metric_date);`,
			`CREATE INDEX IF NOT EXISTS idx_details_client_id ON call_details (client_id);`,
		},
	},
	{
		table: model.RecommendationAnalysisTable,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS recommendation_analysis (
				id SERIAL PRIMARY KEY,
				client_id VARCHAR(255) NOT NULL,
				start_date DATE NOT NULL,
				end_date DATE NOT NULL,
				period_type VARCHAR(20) DEFAULT 'weekly',
				summary_points TEXT[],
				overall_summary TEXT,
				created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (client_id, start_date, end_date, period_type)
			);`,
		},
	},
}

// InitSchema creates missing tables and indexes. A failure marks only that
// table unavailable; the other tables still get their stages. One UnitResult
// per table goes into the run report.
func (s *Sink) InitSchema(ctx context.Context) []model.UnitResult {
	results := make([]model.UnitResult, 0, len(tableMigrations))
	for _, m := range tableMigrations {
		if err := s.runStatements(ctx, m.statements); err != nil {
			s.log.Error().Err(err).Str("table", m.table).Msg("schema init failed, stage will be skipped")
			results = append(results, model.UnitResult{Stage: model.StageSchema, Category: m.table, Status: model.UnitFailed, Err: err.Error()})
			continue
		}
		s.ready[m.table] = true
		results = append(results, model.UnitResult{Stage: model.StageSchema, Category: m.table, Status: model.UnitOK})
	}
	return results
}

func (s *Sink) runStatements(ctx context.Context, statements []string) error {
	for i, stmt := range statements {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
