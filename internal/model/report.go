package model

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatus string

const (
	UnitOK      UnitStatus = "ok"
	UnitSkipped UnitStatus = "skipped"
	UnitFailed  UnitStatus = "failed"
)

// Stage names as they appear in run reports and logs.
const (
	StageSchema       = "schema"
	StageSummary      = "daily_summary"
	StageCriteria     = "criteria"
	StageCallDetails  = "call_details"
	StageRollupImport = "recommendation_rollup"
)

// UnitResult records the outcome of one unit of pipeline work: a (day,
// category) aggregation, a day's summary, one table's schema init, one batch
// upsert. Failures are data, not exceptions, so tests can assert on them.
type UnitResult struct {
	Stage    string
	Day      string
	Category string
	Status   UnitStatus
	Rows     int
	Err      string
}

// RunReport collects every unit outcome of a single pipeline pass.
type RunReport struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	RangeStart time.Time
	RangeEnd   time.Time
	NoData     bool
	Units      []UnitResult
}

func NewRunReport() *RunReport {
	return &RunReport{RunID: uuid.New(), StartedAt: time.Now().UTC()}
}

func (r *RunReport) Add(u UnitResult) {
	r.Units = append(r.Units, u)
}

func (r *RunReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Failed returns the failed units.
func (r *RunReport) Failed() []UnitResult {
	return r.byStatus(UnitFailed)
}

// Skipped returns the skipped units.
func (r *RunReport) Skipped() []UnitResult {
	return r.byStatus(UnitSkipped)
}

// RowsWritten sums row counts over successful units of a stage. An empty
// stage name sums every successful unit.
func (r *RunReport) RowsWritten(stage string) int {
	total := 0
	for _, u := range r.Units {
		if u.Status != UnitOK {
			continue
		}
		if stage != "" && u.Stage != stage {
			continue
		}
		total += u.Rows
	}
	return total
}

func (r *RunReport) byStatus(status UnitStatus) []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out
}
