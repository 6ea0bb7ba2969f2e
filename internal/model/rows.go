package model

import (
	"time"

	"github.com/lib/pq"
)

// Destination table names are fixed: the BI layer addresses them by name.
const (
	CriteriaMetricsTable        = "call_criteria_metrics"
	DailySummaryTable           = "daily_summary_metrics"
	CallDetailsTable            = "call_details"
	RecommendationAnalysisTable = "recommendation_analysis"
)

// CriteriaMetricRow is one (day, label tuple, category, criterion) aggregate.
// id and created_at are owned by the database.
type CriteriaMetricRow struct {
	MetricDate       time.Time `gorm:"column:metric_date"`
	WeekStartDate    time.Time `gorm:"column:week_start_date"`
	ClientID         string    `gorm:"column:client_id"`
	Subdomain        string    `gorm:"column:subdomain"`
	Administrator    string    `gorm:"column:administrator"`
	CallDirection    string    `gorm:"column:call_direction"`
	Source           string    `gorm:"column:source"`
	CallType         string    `gorm:"column:call_type"`
	CriterionName    string    `gorm:"column:criterion_name"`
	TotalScore       float64   `gorm:"column:total_score"`
	ScoredCallsCount int       `gorm:"column:scored_calls_count"`
	AvgScore         *float64  `gorm:"column:avg_score"`
}

func (CriteriaMetricRow) TableName() string { return CriteriaMetricsTable }

// DailySummaryRow is one (day, label tuple, category) aggregate with its
// derived ratios. Every ratio is nil when its denominator is zero.
type DailySummaryRow struct {
	MetricDate                    time.Time `gorm:"column:metric_date"`
	WeekStartDate                 time.Time `gorm:"column:week_start_date"`
	ClientID                      string    `gorm:"column:client_id"`
	Subdomain                     string    `gorm:"column:subdomain"`
	Administrator                 string    `gorm:"column:administrator"`
	CallDirection                 string    `gorm:"column:call_direction"`
	Source                        string    `gorm:"column:source"`
	CallType                      string    `gorm:"column:call_type"`
	TotalCalls                    int       `gorm:"column:total_calls"`
	ConvertedCalls                int       `gorm:"column:converted_calls"`
	ConversionRate                *float64  `gorm:"column:conversion_rate"`
	TotalDurationSeconds          int       `gorm:"column:total_duration_seconds"`
	AvgDurationSeconds            *float64  `gorm:"column:avg_duration_seconds"`
	TotalOverallScore             float64   `gorm:"column:total_overall_score"`
	ScoredCallsCount              int       `gorm:"column:scored_calls_count"`
	FgPercent                     *float64  `gorm:"column:fg_percent"`
	TotalProcessingSpeedMinutes   float64   `gorm:"column:total_processing_speed_minutes"`
	CallsWithProcessingSpeedCount int       `gorm:"column:calls_with_processing_speed_count"`
	AvgProcessingSpeedMinutes     *float64  `gorm:"column:avg_processing_speed_minutes"`
}

func (DailySummaryRow) TableName() string { return DailySummaryTable }

// CallDetailRow is one browsable row per call, keyed by the source document
// id so reruns overwrite in place.
type CallDetailRow struct {
	CallMongoID         string    `gorm:"column:call_mongo_id;primaryKey"`
	MetricDate          time.Time `gorm:"column:metric_date"`
	Administrator       string    `gorm:"column:administrator"`
	TranscriptURL       *string   `gorm:"column:transcript_url"`
	RecordingURL        *string   `gorm:"column:recording_url"`
	RecommendationsText *string   `gorm:"column:recommendations_text"`
	ClientID            string    `gorm:"column:client_id"`
	Subdomain           string    `gorm:"column:subdomain"`
	CallID              string    `gorm:"column:call_id"`
	CallType            *string   `gorm:"column:call_type"`
	IsEffective         *bool     `gorm:"column:is_effective"`
	MatchedCriteria     *string   `gorm:"column:matched_criteria"`
}

func (CallDetailRow) TableName() string { return CallDetailsTable }

// RecommendationAnalysisRow is one imported per-period recommendation rollup.
type RecommendationAnalysisRow struct {
	ClientID       string         `gorm:"column:client_id"`
	StartDate      time.Time      `gorm:"column:start_date"`
	EndDate        time.Time      `gorm:"column:end_date"`
	PeriodType     string         `gorm:"column:period_type"`
	SummaryPoints  pq.StringArray `gorm:"column:summary_points;type:text[]"`
	OverallSummary string         `gorm:"column:overall_summary"`
	CreatedAt      *time.Time     `gorm:"column:created_at"`
}

func (RecommendationAnalysisRow) TableName() string { return RecommendationAnalysisTable }

// RecommendationAnalysisDoc is the source-side shape of one rollup document.
type RecommendationAnalysisDoc struct {
	ClientID     string       `bson:"client_id"`
	StartDate    time.Time    `bson:"start_date"`
	EndDate      time.Time    `bson:"end_date"`
	PeriodType   string       `bson:"period_type"`
	AnalysisData AnalysisData `bson:"analysis_data"`
	CreatedAt    *time.Time   `bson:"created_at"`
}

// AnalysisData carries the textual summary payload of a rollup document.
type AnalysisData struct {
	SummaryPoints  []string `bson:"summary_points"`
	OverallSummary string   `bson:"overall_summary"`
}
