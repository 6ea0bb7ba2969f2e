package aggregate

import (
	"time"

	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/model"
)

type criterionKey struct {
	label labelKey
	name  string
}

type criterionAcc struct {
	total float64
	count int
}

// CriteriaMetrics aggregates one day's records of one call category into
// per-criterion rows. Records failing the eligibility filter or carrying a
// different category are ignored, as are metrics keys outside the category's
// registry table and the reserved service keys. Output order is
// deterministic.
func CriteriaMetrics(records []model.CallRecord, reg criteria.Registry, day time.Time, category string) []model.CriteriaMetricRow {
	dayKey := day.Format(DayLayout)
	criteriaSet := reg.ForCategory(category)

	groups := make(map[criterionKey]*criterionAcc)
	for _, r := range records {
		if !Eligible(r, dayKey) || r.Category() != category {
			continue
		}
		label := labelOf(r)
		for _, c := range criteriaSet {
			if criteria.Reserved(c.Key) {
				continue
			}
			score, ok := r.CriterionScore(c.Key)
			if !ok {
				continue
			}
			key := criterionKey{label: label, name: c.Label}
			acc := groups[key]
			if acc == nil {
				acc = &criterionAcc{}
				groups[key] = acc
			}
			acc.total += score
			acc.count++
		}
	}

	weekStart := WeekStart(day)
	rows := make([]model.CriteriaMetricRow, 0, len(groups))
	for key, acc := range groups {
		rows = append(rows, model.CriteriaMetricRow{
			MetricDate:       day,
			WeekStartDate:    weekStart,
			ClientID:         key.label.ClientID,
			Subdomain:        key.label.Subdomain,
			Administrator:    key.label.Administrator,
			CallDirection:    key.label.CallDirection,
			Source:           key.label.Source,
			CallType:         category,
			CriterionName:    key.name,
			TotalScore:       acc.total,
			ScoredCallsCount: acc.count,
			AvgScore:         ratio(acc.total, acc.count),
		})
	}

	sortRows(rows, func(a, b model.CriteriaMetricRow) bool {
		ak := labelKey{a.ClientID, a.Subdomain, a.Administrator, a.CallDirection, a.Source}
		bk := labelKey{b.ClientID, b.Subdomain, b.Administrator, b.CallDirection, b.Source}
		if ak != bk {
			return ak.less(bk)
		}
		return a.CriterionName < b.CriterionName
	})
	return rows
}
