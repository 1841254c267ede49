package types

import "github.com/clipforge/media-api/internal/models"

// Status constants for API responses
const (
	StatusOK         = "ok"
	StatusError      = "error"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
	StatusQueued     = "queued"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// SingleMediaResponse for getting or creating a single media record
type SingleMediaResponse struct {
	BaseResponse
	Media *Media `json:"media"`
}

// MediaListResponse for paginated media lists
type MediaListResponse struct {
	BaseResponse
	Media  []Media `json:"media"`
	Count  int     `json:"count"`  // Number of results in this response
	Total  int64   `json:"total"`  // Total available results
	Offset int     `json:"offset,omitempty"`
}

// ProcessingStatusResponse for the per-stage status endpoint
type ProcessingStatusResponse struct {
	BaseResponse
	UUID       string          `json:"uuid"`
	Processing ProcessingState `json:"processing"`
}

// TranscriptResponse for transcript data
type TranscriptResponse struct {
	BaseResponse
	UUID       string                    `json:"uuid"`
	Transcript *models.TranscriptPayload `json:"transcript"`
}

// InsightsResponse for the insights fan-out results
type InsightsResponse struct {
	BaseResponse
	UUID     string                  `json:"uuid"`
	Insights *models.InsightsPayload `json:"insights"`
	Analysis *models.AnalysisPayload `json:"analysis,omitempty"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	BaseResponse
	Version  string                 `json:"version,omitempty"`
	Services map[string]interface{} `json:"services,omitempty"`
}

// JobResponse for async job status
type JobResponse struct {
	BaseResponse
	JobID  uint        `json:"jobId"`
	Result interface{} `json:"result,omitempty"`
}
