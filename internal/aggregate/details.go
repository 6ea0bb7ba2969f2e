package aggregate

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/model"
)

const transcriptURLFormat = "https://api.mlab-electronics.ru/api/transcriptions/%s/download"

// noRecommendations is the placeholder written for "другое" calls that carry
// no recommendations at all.
const noRecommendations = "-"

// SkippedRecord identifies one source document dropped during detail
// extraction, with the reason.
type SkippedRecord struct {
	ID     string
	Reason string
}

// CallDetails flattens selected records into browsable detail rows. A record
// qualifies when it has a transcript filename, a recording link and a
// successful transcription; an empty recommendations list disqualifies every
// category except "другое", which instead gets the placeholder text.
// Malformed records (zero id, day key that does not parse) are returned as
// skips so the caller can report them without aborting the batch.
func CallDetails(records []model.CallRecord) ([]model.CallDetailRow, []SkippedRecord) {
	var rows []model.CallDetailRow
	var skipped []SkippedRecord

	for _, r := range records {
		if r.FilenameTranscription == "" || r.CallLink == "" || r.TranscriptionStatus != model.TranscriptionSuccess {
			continue
		}
		category := r.Category()
		if len(r.Recommendations) == 0 && category != criteria.CategoryOther {
			continue
		}

		if r.ID == primitive.NilObjectID {
			skipped = append(skipped, SkippedRecord{ID: r.CallID, Reason: "missing document id"})
			continue
		}
		day, err := time.Parse(DayLayout, r.DayKey)
		if err != nil {
			skipped = append(skipped, SkippedRecord{ID: r.ID.Hex(), Reason: fmt.Sprintf("bad day key %q", r.DayKey)})
			continue
		}

		transcriptURL := fmt.Sprintf(transcriptURLFormat, r.FilenameTranscription)
		recordingURL := r.CallLink

		var recommendationsText *string
		if len(r.Recommendations) > 0 {
			text := strings.Join(r.Recommendations, "\n")
			recommendationsText = &text
		} else if category == criteria.CategoryOther {
			text := noRecommendations
			recommendationsText = &text
		}

		var callType *string
		if category != "" {
			callType = &category
		}

		var isEffective *bool
		var matchedCriteria *string
		if r.Efficiency != nil {
			isEffective = r.Efficiency.IsEffective
			if len(r.Efficiency.MatchedCriteria) > 0 {
				joined := strings.Join(r.Efficiency.MatchedCriteria, ", ")
				matchedCriteria = &joined
			}
		}

		rows = append(rows, model.CallDetailRow{
			CallMongoID:         r.ID.Hex(),
			MetricDate:          day,
			Administrator:       r.Administrator,
			TranscriptURL:       &transcriptURL,
			RecordingURL:        &recordingURL,
			RecommendationsText: recommendationsText,
			ClientID:            r.ClientID,
			Subdomain:           r.Subdomain,
			CallID:              r.CallID,
			CallType:            callType,
			IsEffective:         isEffective,
			MatchedCriteria:     matchedCriteria,
		})
	}

	sortRows(rows, func(a, b model.CallDetailRow) bool { return a.CallMongoID < b.CallMongoID })
	return rows, skipped
}
