package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/model"
)

type fakeSource struct {
	start, end time.Time
	hasData    bool
	boundsErr  error

	categories  map[string][]string
	eligible    map[string][]model.CallRecord
	eligibleDay map[string][]model.CallRecord
	details     map[string][]model.CallRecord
	rollups     []model.RecommendationAnalysisDoc

	summaryErr map[string]error
}

func (f *fakeSource) DayBounds(context.Context) (time.Time, time.Time, bool, error) {
	return f.start, f.end, f.hasData, f.boundsErr
}

func (f *fakeSource) CategoriesOnDay(_ context.Context, dayKey string) ([]string, error) {
	return f.categories[dayKey], nil
}

func (f *fakeSource) EligibleCalls(_ context.Context, dayKey, category string) ([]model.CallRecord, error) {
	return f.eligible[dayKey+"|"+category], nil
}

func (f *fakeSource) EligibleCallsOnDay(_ context.Context, dayKey string) ([]model.CallRecord, error) {
	if err := f.summaryErr[dayKey]; err != nil {
		return nil, err
	}
	return f.eligibleDay[dayKey], nil
}

func (f *fakeSource) DetailCalls(_ context.Context, dayKey string) ([]model.CallRecord, error) {
	return f.details[dayKey], nil
}

func (f *fakeSource) RecommendationAnalyses(context.Context) ([]model.RecommendationAnalysisDoc, error) {
	return f.rollups, nil
}

type fakeSink struct {
	ready map[string]bool

	criteriaBatches []([]model.CriteriaMetricRow)
	summaryBatches  []([]model.DailySummaryRow)
	detailBatches   []([]model.CallDetailRow)
	rollupBatches   []([]model.RecommendationAnalysisRow)

	criteriaErr error
}

func newFakeSink() *fakeSink {
	return &fakeSink{ready: map[string]bool{
		model.CriteriaMetricsTable:        true,
		model.DailySummaryTable:           true,
		model.CallDetailsTable:            true,
		model.RecommendationAnalysisTable: true,
	}}
}

func (f *fakeSink) InitSchema(context.Context) []model.UnitResult {
	var units []model.UnitResult
	for table, ok := range f.ready {
		status := model.UnitOK
		if !ok {
			status = model.UnitFailed
		}
		units = append(units, model.UnitResult{Stage: model.StageSchema, Category: table, Status: status})
	}
	return units
}

func (f *fakeSink) TableReady(table string) bool { return f.ready[table] }

func (f *fakeSink) UpsertCriteriaMetrics(_ context.Context, rows []model.CriteriaMetricRow) error {
	if f.criteriaErr != nil {
		return f.criteriaErr
	}
	f.criteriaBatches = append(f.criteriaBatches, rows)
	return nil
}

func (f *fakeSink) UpsertDailySummaries(_ context.Context, rows []model.DailySummaryRow) error {
	f.summaryBatches = append(f.summaryBatches, rows)
	return nil
}

func (f *fakeSink) UpsertCallDetails(_ context.Context, rows []model.CallDetailRow) error {
	f.detailBatches = append(f.detailBatches, rows)
	return nil
}

func (f *fakeSink) UpsertRecommendationAnalyses(_ context.Context, rows []model.RecommendationAnalysisRow) error {
	f.rollupBatches = append(f.rollupBatches, rows)
	return nil
}

func eligibleRecord(dayKey, category string) model.CallRecord {
	return model.CallRecord{
		ID:                  primitive.NewObjectID(),
		ClientID:            "clinic-1",
		Subdomain:           "north",
		Administrator:       "Анна",
		CallDirection:       "inbound",
		Source:              "site",
		TranscriptionStatus: model.TranscriptionSuccess,
		Recommendations:     []string{"совет"},
		DayKey:              dayKey,
		Metrics: map[string]any{
			"call_type_classification": category,
			"greeting":                 8.0,
		},
	}
}

func newPipeline(src Source, sink Sink) *Pipeline {
	return New(src, sink, criteria.NewRegistry(), zerolog.Nop())
}

func TestRunNoData(t *testing.T) {
	src := &fakeSource{hasData: false}
	sink := newFakeSink()

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.NoData)
	assert.Empty(t, sink.summaryBatches)
	assert.Empty(t, sink.criteriaBatches)
	assert.Empty(t, sink.detailBatches)
	assert.Empty(t, sink.rollupBatches)
}

func TestRunDayBoundsError(t *testing.T) {
	src := &fakeSource{boundsErr: errors.New("source down")}
	sink := newFakeSink()

	_, err := newPipeline(src, sink).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve date range")
}

func TestRunProcessesWholeWindowAcrossCategories(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	src := &fakeSource{
		start: day1, end: day2, hasData: true,
		categories: map[string][]string{
			"2025-03-10": {"первичка"},
			"2025-03-11": {"вторичка"},
		},
		eligible: map[string][]model.CallRecord{
			"2025-03-10|первичка": {eligibleRecord("2025-03-10", "первичка")},
			"2025-03-11|вторичка": {eligibleRecord("2025-03-11", "вторичка")},
		},
		eligibleDay: map[string][]model.CallRecord{
			"2025-03-10": {eligibleRecord("2025-03-10", "первичка")},
			"2025-03-11": {eligibleRecord("2025-03-11", "вторичка")},
		},
	}
	sink := newFakeSink()

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, day1, report.RangeStart)
	assert.Equal(t, day2, report.RangeEnd)
	assert.Empty(t, report.Failed())

	// Both days produced summary and criteria batches despite differing
	// categories per day.
	require.Len(t, sink.summaryBatches, 2)
	require.Len(t, sink.criteriaBatches, 2)
	require.Len(t, sink.criteriaBatches[0], 1)
	assert.Equal(t, "первичка", sink.criteriaBatches[0][0].CallType)
	require.Len(t, sink.criteriaBatches[1], 1)
	assert.Equal(t, "вторичка", sink.criteriaBatches[1][0].CallType)
}

func TestRunSchemaFailureDisablesOnlyThatStage(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{
		start: day, end: day, hasData: true,
		categories: map[string][]string{"2025-03-10": {"первичка"}},
		eligible: map[string][]model.CallRecord{
			"2025-03-10|первичка": {eligibleRecord("2025-03-10", "первичка")},
		},
	}
	sink := newFakeSink()
	sink.ready[model.DailySummaryTable] = false

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sink.summaryBatches)
	assert.Len(t, sink.criteriaBatches, 1)

	var summarySkipped bool
	for _, u := range report.Skipped() {
		if u.Stage == model.StageSummary {
			summarySkipped = true
		}
	}
	assert.True(t, summarySkipped)
}

func TestRunDayFailureDoesNotAbortWindow(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	src := &fakeSource{
		start: day1, end: day2, hasData: true,
		summaryErr: map[string]error{"2025-03-10": errors.New("query failed")},
		eligibleDay: map[string][]model.CallRecord{
			"2025-03-11": {eligibleRecord("2025-03-11", "первичка")},
		},
	}
	sink := newFakeSink()

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failed(), 1)
	assert.Equal(t, model.StageSummary, report.Failed()[0].Stage)
	assert.Equal(t, "2025-03-10", report.Failed()[0].Day)

	// Day two still wrote its summary batch.
	require.Len(t, sink.summaryBatches, 1)
	require.Len(t, sink.summaryBatches[0], 1)
}

func TestRunReportsSkippedDetailRecords(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	good := eligibleRecord("2025-03-10", "первичка")
	good.FilenameTranscription = "a.json"
	good.CallLink = "https://crm.example.com/rec/1"

	bad := eligibleRecord("not-a-date", "первичка")
	bad.FilenameTranscription = "b.json"
	bad.CallLink = "https://crm.example.com/rec/2"

	src := &fakeSource{
		start: day, end: day, hasData: true,
		details: map[string][]model.CallRecord{"2025-03-10": {good, bad}},
	}
	sink := newFakeSink()

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)

	var detailSkips int
	for _, u := range report.Skipped() {
		if u.Stage == model.StageCallDetails && u.Err != "" {
			detailSkips++
		}
	}
	assert.Equal(t, 1, detailSkips)

	require.Len(t, sink.detailBatches, 1)
	require.Len(t, sink.detailBatches[0], 1)
	assert.Equal(t, good.ID.Hex(), sink.detailBatches[0][0].CallMongoID)
}

func TestRunImportsRollups(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{
		start: day, end: day, hasData: true,
		rollups: []model.RecommendationAnalysisDoc{
			{ClientID: "clinic-1", StartDate: day, EndDate: day.AddDate(0, 0, 6)},
		},
	}
	sink := newFakeSink()

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.rollupBatches, 1)
	require.Len(t, sink.rollupBatches[0], 1)
	assert.Equal(t, "weekly", sink.rollupBatches[0][0].PeriodType)
	assert.Equal(t, 1, report.RowsWritten(model.StageRollupImport))
}

func TestRunUpsertFailureRecordedAndRunContinues(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{
		start: day, end: day, hasData: true,
		categories: map[string][]string{"2025-03-10": {"первичка"}},
		eligible: map[string][]model.CallRecord{
			"2025-03-10|первичка": {eligibleRecord("2025-03-10", "первичка")},
		},
		rollups: []model.RecommendationAnalysisDoc{{ClientID: "clinic-1"}},
	}
	sink := newFakeSink()
	sink.criteriaErr = errors.New("constraint violation")

	report, err := newPipeline(src, sink).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failed(), 1)
	assert.Equal(t, model.StageCriteria, report.Failed()[0].Stage)

	// Later stages still ran.
	require.Len(t, sink.rollupBatches, 1)
}
