package aggregate

import (
	"time"

	"call-analytics-exporter/internal/model"
)

const maxOverallScore = 10

type summaryKey struct {
	label    labelKey
	category string
}

type summaryAcc struct {
	totalCalls     int
	convertedCalls int
	totalDuration  float64
	totalScore     float64
	scoredCalls    int
	totalSpeed     float64
	speedCalls     int
}

// DailySummary aggregates one day's eligible records into per-(label tuple,
// category) summary rows. Records without a category classification are
// excluded entirely. Output order is deterministic.
func DailySummary(records []model.CallRecord, day time.Time) []model.DailySummaryRow {
	dayKey := day.Format(DayLayout)

	groups := make(map[summaryKey]*summaryAcc)
	for _, r := range records {
		if !Eligible(r, dayKey) {
			continue
		}
		category := r.Category()
		if category == "" {
			continue
		}
		key := summaryKey{label: labelOf(r), category: category}
		acc := groups[key]
		if acc == nil {
			acc = &summaryAcc{}
			groups[key] = acc
		}
		acc.totalCalls++
		if r.Converted() {
			acc.convertedCalls++
		}
		acc.totalDuration += r.Duration
		if score, ok := r.OverallScore(); ok {
			acc.totalScore += score
			acc.scoredCalls++
		}
		if r.ProcessingSpeed != nil && *r.ProcessingSpeed != 0 {
			acc.totalSpeed += *r.ProcessingSpeed
			acc.speedCalls++
		}
	}

	weekStart := WeekStart(day)
	rows := make([]model.DailySummaryRow, 0, len(groups))
	for key, acc := range groups {
		avgScore := ratio(acc.totalScore, acc.scoredCalls)
		var fgPercent *float64
		if avgScore != nil {
			v := *avgScore / maxOverallScore * 100
			fgPercent = &v
		}
		rows = append(rows, model.DailySummaryRow{
			MetricDate:                    day,
			WeekStartDate:                 weekStart,
			ClientID:                      key.label.ClientID,
			Subdomain:                     key.label.Subdomain,
			Administrator:                 key.label.Administrator,
			CallDirection:                 key.label.CallDirection,
			Source:                        key.label.Source,
			CallType:                      key.category,
			TotalCalls:                    acc.totalCalls,
			ConvertedCalls:                acc.convertedCalls,
			ConversionRate:                ratio(float64(acc.convertedCalls), acc.totalCalls),
			TotalDurationSeconds:          int(acc.totalDuration),
			AvgDurationSeconds:            ratio(acc.totalDuration, acc.totalCalls),
			TotalOverallScore:             acc.totalScore,
			ScoredCallsCount:              acc.scoredCalls,
			FgPercent:                     fgPercent,
			TotalProcessingSpeedMinutes:   acc.totalSpeed,
			CallsWithProcessingSpeedCount: acc.speedCalls,
			AvgProcessingSpeedMinutes:     ratio(acc.totalSpeed, acc.speedCalls),
		})
	}

	sortRows(rows, func(a, b model.DailySummaryRow) bool {
		ak := labelKey{a.ClientID, a.Subdomain, a.Administrator, a.CallDirection, a.Source}
		bk := labelKey{b.ClientID, b.Subdomain, b.Administrator, b.CallDirection, b.Source}
		if ak != bk {
			return ak.less(bk)
		}
		return a.CallType < b.CallType
	})
	return rows
}
