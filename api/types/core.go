package types

import "time"

// Core data types used across API responses

// Media is the external view of a media record
type Media struct {
	UUID        string   `json:"uuid"`
	OwnerID     string   `json:"ownerId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SourceURL   string   `json:"sourceUrl,omitempty"` // Remote origin, if ingested by URL
	MimeType    string   `json:"mimeType,omitempty"`
	SizeBytes   int64    `json:"sizeBytes,omitempty"`
	Duration    float64  `json:"duration,omitempty"` // Seconds
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   int64    `json:"createdAt"` // Unix timestamp
	UpdatedAt   int64    `json:"updatedAt"` // Unix timestamp
}

// StageState is the status of one pipeline stage with its last error
type StageState struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ProcessingState is the full per-stage breakdown of a record's pipeline run
type ProcessingState struct {
	Status        string     `json:"status"`          // Aggregate status
	Error         string     `json:"error,omitempty"` // Aggregated stage errors, set when failed
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Transcription StageState `json:"transcription"`
	Analysis      StageState `json:"analysis"`
	Insights      StageState `json:"insights"`
	Highlight     StageState `json:"highlight"` // Detached from the aggregate status
}
