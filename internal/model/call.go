package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptionSuccess is the only transcription status that makes a call
// eligible for aggregation.
const TranscriptionSuccess = "success"

// Efficiency is the optional per-call effectiveness block produced by the
// analysis layer.
type Efficiency struct {
	IsEffective     *bool    `bson:"is_effective"`
	MatchedCriteria []string `bson:"matched_criteria"`
}

// CallRecord is one analyzed phone call as stored in the source collection.
// The metrics map is sparse and schema-free: which keys are meaningful depends
// on the call category, so callers resolve keys through the criteria registry
// instead of ranging over the map.
type CallRecord struct {
	ID                    primitive.ObjectID `bson:"_id"`
	ClientID              string             `bson:"client_id"`
	Subdomain             string             `bson:"subdomain"`
	Administrator         string             `bson:"administrator"`
	CallDirection         string             `bson:"call_direction"`
	Source                string             `bson:"source"`
	Duration              float64            `bson:"duration"`
	ProcessingSpeed       *float64           `bson:"processing_speed"`
	TranscriptionStatus   string             `bson:"transcription_status"`
	Recommendations       []string           `bson:"recommendations"`
	FilenameTranscription string             `bson:"filename_transcription"`
	CallLink              string             `bson:"call_link"`
	CallID                string             `bson:"call_id"`
	DayKey                string             `bson:"created_date_for_filtering"`
	Metrics               map[string]any     `bson:"metrics"`
	Efficiency            *Efficiency        `bson:"efficiency"`
}

// Category returns the call category classification from the metrics map, or
// "" when absent.
func (r CallRecord) Category() string {
	if r.Metrics == nil {
		return ""
	}
	if v, ok := r.Metrics["call_type_classification"].(string); ok {
		return v
	}
	return ""
}

// Converted reports whether the analysis marked the call as converted.
func (r CallRecord) Converted() bool {
	if r.Metrics == nil {
		return false
	}
	v, ok := r.Metrics["conversion"].(bool)
	return ok && v
}

// OverallScore returns the call's overall score when present and numeric.
func (r CallRecord) OverallScore() (float64, bool) {
	if r.Metrics == nil {
		return 0, false
	}
	return asNumber(r.Metrics["overall_score"])
}

// CriterionScore returns the score for one criterion key when present and
// numeric. BSON decodes numbers into several Go types, all accepted here.
func (r CallRecord) CriterionScore(key string) (float64, bool) {
	if r.Metrics == nil {
		return 0, false
	}
	return asNumber(r.Metrics[key])
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
