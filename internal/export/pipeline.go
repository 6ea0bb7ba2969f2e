// Package export orchestrates one full pipeline pass: resolve the date
// window, aggregate per day, extract details, import rollups. The pipeline is
// a stateless, idempotent function of the source data; failures below run
// level are recorded in the RunReport and never abort the pass.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"call-analytics-exporter/internal/aggregate"
	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/model"
)

// Source is the read side of the pipeline, implemented by source.Store.
type Source interface {
	DayBounds(ctx context.Context) (start, end time.Time, ok bool, err error)
	CategoriesOnDay(ctx context.Context, dayKey string) ([]string, error)
	EligibleCalls(ctx context.Context, dayKey, category string) ([]model.CallRecord, error)
	EligibleCallsOnDay(ctx context.Context, dayKey string) ([]model.CallRecord, error)
	DetailCalls(ctx context.Context, dayKey string) ([]model.CallRecord, error)
	RecommendationAnalyses(ctx context.Context) ([]model.RecommendationAnalysisDoc, error)
}

// Sink is the write side, implemented by warehouse.Sink.
type Sink interface {
	InitSchema(ctx context.Context) []model.UnitResult
	TableReady(table string) bool
	UpsertCriteriaMetrics(ctx context.Context, rows []model.CriteriaMetricRow) error
	UpsertDailySummaries(ctx context.Context, rows []model.DailySummaryRow) error
	UpsertCallDetails(ctx context.Context, rows []model.CallDetailRow) error
	UpsertRecommendationAnalyses(ctx context.Context, rows []model.RecommendationAnalysisRow) error
}

type Pipeline struct {
	source   Source
	sink     Sink
	registry criteria.Registry
	log      zerolog.Logger
}

func New(source Source, sink Sink, registry criteria.Registry, log zerolog.Logger) *Pipeline {
	return &Pipeline{source: source, sink: sink, registry: registry, log: log}
}

// Run performs exactly one pass. The returned report is never nil; the error
// is non-nil only for failures that prevent the window from being resolved.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	report := model.NewRunReport()
	defer report.Finish()

	p.log.Info().Str("run_id", report.RunID.String()).Msg("export run starting")

	for _, unit := range p.sink.InitSchema(ctx) {
		report.Add(unit)
	}

	start, end, ok, err := p.source.DayBounds(ctx)
	if err != nil {
		return report, fmt.Errorf("resolve date range: %w", err)
	}
	if !ok {
		report.NoData = true
		p.log.Info().Msg("no day keys in source collection, nothing to process")
		return report, nil
	}
	report.RangeStart = start
	report.RangeEnd = end
	p.log.Info().
		Str("from", start.Format(aggregate.DayLayout)).
		Str("to", end.Format(aggregate.DayLayout)).
		Msg("resolved processing range")

	p.runSummaryStage(ctx, report, start, end)
	p.runCriteriaStage(ctx, report, start, end)
	p.runDetailsStage(ctx, report, start, end)
	p.runRollupStage(ctx, report)

	p.log.Info().
		Str("run_id", report.RunID.String()).
		Int("rows_written", report.RowsWritten("")).
		Int("failed_units", len(report.Failed())).
		Int("skipped_units", len(report.Skipped())).
		Msg("export run finished")

	return report, nil
}

func (p *Pipeline) runSummaryStage(ctx context.Context, report *model.RunReport, start, end time.Time) {
	if p.stageDisabled(report, model.StageSummary, model.DailySummaryTable) {
		return
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format(aggregate.DayLayout)

		records, err := p.source.EligibleCallsOnDay(ctx, dayKey)
		if err != nil {
			p.failUnit(report, model.UnitResult{Stage: model.StageSummary, Day: dayKey}, err)
			continue
		}

		rows := aggregate.DailySummary(records, day)
		if err := p.sink.UpsertDailySummaries(ctx, rows); err != nil {
			p.failUnit(report, model.UnitResult{Stage: model.StageSummary, Day: dayKey, Rows: len(rows)}, err)
			continue
		}
		report.Add(model.UnitResult{Stage: model.StageSummary, Day: dayKey, Status: model.UnitOK, Rows: len(rows)})
	}
}

func (p *Pipeline) runCriteriaStage(ctx context.Context, report *model.RunReport, start, end time.Time) {
	if p.stageDisabled(report, model.StageCriteria, model.CriteriaMetricsTable) {
		return
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format(aggregate.DayLayout)

		categories, err := p.source.CategoriesOnDay(ctx, dayKey)
		if err != nil {
			p.failUnit(report, model.UnitResult{Stage: model.StageCriteria, Day: dayKey}, err)
			continue
		}

		var dayRows []model.CriteriaMetricRow
		for _, category := range categories {
			records, err := p.source.EligibleCalls(ctx, dayKey, category)
			if err != nil {
				p.failUnit(report, model.UnitResult{Stage: model.StageCriteria, Day: dayKey, Category: category}, err)
				continue
			}
			dayRows = append(dayRows, aggregate.CriteriaMetrics(records, p.registry, day, category)...)
		}

		if err := p.sink.UpsertCriteriaMetrics(ctx, dayRows); err != nil {
			p.failUnit(report, model.UnitResult{Stage: model.StageCriteria, Day: dayKey, Rows: len(dayRows)}, err)
			continue
		}
		report.Add(model.UnitResult{Stage: model.StageCriteria, Day: dayKey, Status: model.UnitOK, Rows: len(dayRows)})
	}
}

func (p *Pipeline) runDetailsStage(ctx context.Context, report *model.RunReport, start, end time.Time) {
	if p.stageDisabled(report, model.StageCallDetails, model.CallDetailsTable) {
		return
	}

	var rows []model.CallDetailRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format(aggregate.DayLayout)

		records, err := p.source.DetailCalls(ctx, dayKey)
		if err != nil {
			p.failUnit(report, model.UnitResult{Stage: model.StageCallDetails, Day: dayKey}, err)
			continue
		}

		dayRows, skipped := aggregate.CallDetails(records)
		for _, skip := range skipped {
			p.log.Warn().Str("record", skip.ID).Str("reason", skip.Reason).Msg("call detail record skipped")
			report.Add(model.UnitResult{
				Stage:  model.StageCallDetails,
				Day:    dayKey,
				Status: model.UnitSkipped,
				Err:    fmt.Sprintf("record %s: %s", skip.ID, skip.Reason),
			})
		}
		rows = append(rows, dayRows...)
	}

	// The detail table is keyed by call id, so the whole window goes out in
	// one batched upsert.
	if err := p.sink.UpsertCallDetails(ctx, rows); err != nil {
		p.failUnit(report, model.UnitResult{Stage: model.StageCallDetails, Rows: len(rows)}, err)
		return
	}
	report.Add(model.UnitResult{Stage: model.StageCallDetails, Status: model.UnitOK, Rows: len(rows)})
}

func (p *Pipeline) runRollupStage(ctx context.Context, report *model.RunReport) {
	if p.stageDisabled(report, model.StageRollupImport, model.RecommendationAnalysisTable) {
		return
	}

	docs, err := p.source.RecommendationAnalyses(ctx)
	if err != nil {
		p.failUnit(report, model.UnitResult{Stage: model.StageRollupImport}, err)
		return
	}

	rows := aggregate.RecommendationRollups(docs)
	if err := p.sink.UpsertRecommendationAnalyses(ctx, rows); err != nil {
		p.failUnit(report, model.UnitResult{Stage: model.StageRollupImport, Rows: len(rows)}, err)
		return
	}
	report.Add(model.UnitResult{Stage: model.StageRollupImport, Status: model.UnitOK, Rows: len(rows)})
}

func (p *Pipeline) stageDisabled(report *model.RunReport, stage, table string) bool {
	if p.sink.TableReady(table) {
		return false
	}
	p.log.Warn().Str("stage", stage).Str("table", table).Msg("stage skipped, schema init failed")
	report.Add(model.UnitResult{Stage: stage, Status: model.UnitSkipped, Err: "schema init failed for " + table})
	return true
}

func (p *Pipeline) failUnit(report *model.RunReport, unit model.UnitResult, err error) {
	unit.Status = model.UnitFailed
	unit.Err = err.Error()
	p.log.Error().Err(err).Str("stage", unit.Stage).Str("day", unit.Day).Str("category", unit.Category).Msg("pipeline unit failed")
	report.Add(unit)
}
