// Package source reads call documents and rollup documents from MongoDB. It
// owns the query shapes; all grouping happens downstream in aggregate.
package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"call-analytics-exporter/internal/aggregate"
	"call-analytics-exporter/internal/config"
	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/model"
)

const (
	dayKeyField   = "created_date_for_filtering"
	categoryField = "metrics.call_type_classification"

	analysisCollection = "recommendation_analysis_results"
)

type Store struct {
	client   *mongo.Client
	calls    *mongo.Collection
	analysis *mongo.Collection
	log      zerolog.Logger
}

// Open connects to the source store and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	log.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("connected to source store")

	return &Store{
		client:   client,
		calls:    db.Collection(cfg.Collection),
		analysis: db.Collection(analysisCollection),
		log:      log,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// DayBounds resolves the inclusive calendar-day window covered by the source
// collection. ok is false when no document carries a day key, which the
// orchestrator treats as "nothing to do".
func (s *Store) DayBounds(ctx context.Context) (start, end time.Time, ok bool, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: dayKeyField, Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "min_date", Value: bson.D{{Key: "$min", Value: "$" + dayKeyField}}},
			{Key: "max_date", Value: bson.D{{Key: "$max", Value: "$" + dayKeyField}}},
		}}},
	}

	cursor, err := s.calls.Aggregate(ctx, pipeline)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("aggregate day bounds: %w", err)
	}
	defer cursor.Close(ctx)

	var bounds []struct {
		MinDate string `bson:"min_date"`
		MaxDate string `bson:"max_date"`
	}
	if err := cursor.All(ctx, &bounds); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("decode day bounds: %w", err)
	}
	if len(bounds) == 0 || bounds[0].MinDate == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	start, err = time.Parse(aggregate.DayLayout, bounds[0].MinDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parse min day key %q: %w", bounds[0].MinDate, err)
	}
	end, err = time.Parse(aggregate.DayLayout, bounds[0].MaxDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parse max day key %q: %w", bounds[0].MaxDate, err)
	}
	return start, end, true, nil
}

// CategoriesOnDay lists the distinct call categories observed on a day,
// empty classifications dropped, sorted for stable processing order.
func (s *Store) CategoriesOnDay(ctx context.Context, dayKey string) ([]string, error) {
	values, err := s.calls.Distinct(ctx, categoryField, bson.D{{Key: dayKeyField, Value: dayKey}})
	if err != nil {
		return nil, fmt.Errorf("distinct categories for %s: %w", dayKey, err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if cat, ok := v.(string); ok && cat != "" {
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// eligibleFilter matches records that count toward aggregation: the target
// day, a materialized metrics object, a successful transcription and a
// non-empty recommendations list.
func eligibleFilter(dayKey string) bson.D {
	return bson.D{
		{Key: dayKeyField, Value: dayKey},
		{Key: "metrics", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$type", Value: "object"},
		}},
		{Key: "transcription_status", Value: model.TranscriptionSuccess},
		{Key: "recommendations", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$nin", Value: bson.A{nil, bson.A{}}},
		}},
	}
}

// EligibleCalls fetches a day's eligible records for one category.
func (s *Store) EligibleCalls(ctx context.Context, dayKey, category string) ([]model.CallRecord, error) {
	filter := append(eligibleFilter(dayKey), bson.E{Key: categoryField, Value: category})
	return s.findCalls(ctx, filter)
}

// EligibleCallsOnDay fetches a day's eligible records across all categories.
func (s *Store) EligibleCallsOnDay(ctx context.Context, dayKey string) ([]model.CallRecord, error) {
	return s.findCalls(ctx, eligibleFilter(dayKey))
}

// DetailCalls fetches a day's records carrying both a transcript and a
// recording reference. Calls classified "другое" are admitted without
// recommendations; the extractor writes a placeholder for them.
func (s *Store) DetailCalls(ctx context.Context, dayKey string) ([]model.CallRecord, error) {
	nonEmpty := bson.D{{Key: "$exists", Value: true}, {Key: "$nin", Value: bson.A{nil, ""}}}
	filter := bson.D{
		{Key: dayKeyField, Value: dayKey},
		{Key: "filename_transcription", Value: nonEmpty},
		{Key: "call_link", Value: nonEmpty},
		{Key: "transcription_status", Value: model.TranscriptionSuccess},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "recommendations", Value: bson.D{
				{Key: "$exists", Value: true},
				{Key: "$nin", Value: bson.A{nil, bson.A{}}},
			}}},
			bson.D{{Key: categoryField, Value: criteria.CategoryOther}},
		}},
	}
	return s.findCalls(ctx, filter)
}

// RecommendationAnalyses reads the whole rollup collection; the importer has
// no date window.
func (s *Store) RecommendationAnalyses(ctx context.Context) ([]model.RecommendationAnalysisDoc, error) {
	cursor, err := s.analysis.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find recommendation analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []model.RecommendationAnalysisDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recommendation analyses: %w", err)
	}
	return docs, nil
}

func (s *Store) findCalls(ctx context.Context, filter bson.D) ([]model.CallRecord, error) {
	cursor, err := s.calls.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find calls: %w", err)
	}
	defer cursor.Close(ctx)

	var records []model.CallRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode calls: %w", err)
	}
	return records, nil
}
