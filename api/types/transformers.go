package types

import "github.com/clipforge/media-api/internal/models"

// MediaFromRecord converts a persisted record into its external view
func MediaFromRecord(rec *models.MediaRecord) Media {
	return Media{
		UUID:        rec.UUID,
		OwnerID:     rec.OwnerID,
		Title:       rec.Title,
		Description: rec.Description,
		SourceURL:   rec.SourceURL,
		MimeType:    rec.MimeType,
		SizeBytes:   rec.SizeBytes,
		Duration:    rec.Duration,
		Status:      string(rec.Status),
		Tags:        rec.Tags,
		CreatedAt:   rec.CreatedAt.Unix(),
		UpdatedAt:   rec.UpdatedAt.Unix(),
	}
}

// MediaListFromRecords converts a page of records, never returning nil so the
// JSON field is always an array
func MediaListFromRecords(recs []models.MediaRecord) []Media {
	items := make([]Media, 0, len(recs))
	for i := range recs {
		items = append(items, MediaFromRecord(&recs[i]))
	}
	return items
}

// ProcessingStateFromRecord flattens the per-stage statuses for the status
// endpoint
func ProcessingStateFromRecord(rec *models.MediaRecord) ProcessingState {
	state := ProcessingState{
		Status:        string(rec.Status),
		Error:         rec.ProcessingError,
		StartedAt:     rec.StartedAt,
		CompletedAt:   rec.CompletedAt,
		Transcription: StageState{Status: string(rec.TranscriptionStatus), Error: rec.TranscriptionError},
		Analysis:      StageState{Status: string(rec.AnalysisStatus), Error: rec.AnalysisError},
		Insights:      StageState{Status: string(rec.InsightsStatus), Error: rec.InsightsError},
		Highlight:     StageState{Status: string(models.HighlightStatusPending)},
	}
	if rec.Insights != nil {
		state.Highlight = StageState{
			Status: string(rec.Insights.HighlightReel.Status),
			Error:  rec.Insights.HighlightReel.Error,
		}
	}
	return state
}
