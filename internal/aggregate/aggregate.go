// Package aggregate holds the pure aggregation and extraction logic of the
// exporter. Every function here is a function of (records, registry, day) and
// produces sink rows in deterministic order; nothing in this package touches
// MongoDB or Postgres.
package aggregate

import (
	"sort"
	"time"

	"call-analytics-exporter/internal/model"
)

// DayLayout is the calendar-day key format used by the source collection's
// created_date_for_filtering field.
const DayLayout = "2006-01-02"

// Eligible reports whether a record qualifies for aggregation on the given
// day key: matching day, a materialized metrics object, a successful
// transcription and at least one recommendation.
func Eligible(r model.CallRecord, dayKey string) bool {
	return r.DayKey == dayKey &&
		r.Metrics != nil &&
		r.TranscriptionStatus == model.TranscriptionSuccess &&
		len(r.Recommendations) > 0
}

// WeekStart returns the Monday of the week containing day, at day precision.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// labelKey is the grouping tuple shared by both aggregators.
type labelKey struct {
	ClientID      string
	Subdomain     string
	Administrator string
	CallDirection string
	Source        string
}

func labelOf(r model.CallRecord) labelKey {
	return labelKey{
		ClientID:      r.ClientID,
		Subdomain:     r.Subdomain,
		Administrator: r.Administrator,
		CallDirection: r.CallDirection,
		Source:        r.Source,
	}
}

func (k labelKey) less(o labelKey) bool {
	if k.ClientID != o.ClientID {
		return k.ClientID < o.ClientID
	}
	if k.Subdomain != o.Subdomain {
		return k.Subdomain < o.Subdomain
	}
	if k.Administrator != o.Administrator {
		return k.Administrator < o.Administrator
	}
	if k.CallDirection != o.CallDirection {
		return k.CallDirection < o.CallDirection
	}
	return k.Source < o.Source
}

func ratio(total float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	v := total / float64(count)
	return &v
}

func sortRows[T any](rows []T, less func(a, b T) bool) {
	sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
