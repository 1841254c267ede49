package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ProcessingStatus represents the aggregate pipeline status of a media record
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// StageStatus represents the status of a single pipeline stage
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusProcessing StageStatus = "processing"
	StageStatusCompleted  StageStatus = "completed"
	StageStatusFailed     StageStatus = "failed"
)

// HighlightStatus represents the lifecycle of the highlight reel, which runs
// detached from the aggregate pipeline status
type HighlightStatus string

const (
	HighlightStatusPending    HighlightStatus = "pending"
	HighlightStatusProcessing HighlightStatus = "processing"
	HighlightStatusReady      HighlightStatus = "ready"
	HighlightStatusFailed     HighlightStatus = "failed"
)

// MediaRecord is the persisted entity mutated by the processing pipeline.
// Per-stage statuses are tracked independently so a failed stage never
// discards results already computed by its siblings.
type MediaRecord struct {
	gorm.Model
	UUID        string `json:"uuid" gorm:"uniqueIndex;not null"`
	OwnerID     string `json:"owner_id" gorm:"index"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`

	// Source blob descriptor
	SourceKey string  `json:"source_key"`
	SourceURL string  `json:"source_url"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	Duration  float64 `json:"duration"` // seconds

	// Aggregate processing state. ProcessingError summarizes the per-stage
	// errors and is set only when a run settles failed.
	Status          ProcessingStatus `json:"status" gorm:"default:'pending';index"`
	ProcessingError string           `json:"processing_error,omitempty"`
	StartedAt       *time.Time       `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at"`

	// Per-stage statuses with their last error, tracked independently
	TranscriptionStatus StageStatus `json:"transcription_status" gorm:"default:'pending'"`
	TranscriptionError  string      `json:"transcription_error,omitempty"`
	AnalysisStatus      StageStatus `json:"analysis_status" gorm:"default:'pending'"`
	AnalysisError       string      `json:"analysis_error,omitempty"`
	InsightsStatus      StageStatus `json:"insights_status" gorm:"default:'pending'"`
	InsightsError       string      `json:"insights_error,omitempty"`

	// Stage result payloads (JSON columns)
	Transcript *TranscriptPayload `json:"transcript,omitempty" gorm:"type:json"`
	Analysis   *AnalysisPayload   `json:"analysis,omitempty" gorm:"type:json"`
	Insights   *InsightsPayload   `json:"insights,omitempty" gorm:"type:json"`

	// Deduplicated union of analysis-derived and generated tags
	Tags StringList `json:"tags,omitempty" gorm:"type:json"`
}

// TableName specifies the table name for GORM
func (MediaRecord) TableName() string {
	return "media_records"
}

// TranscriptSegment is one timed span of transcript text
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// WordTiming is a single word with its timestamps
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptPayload is the result of the transcription stage
type TranscriptPayload struct {
	Text       string              `json:"text"`
	Language   string              `json:"language"`
	Confidence float64             `json:"confidence"`
	Duration   float64             `json:"duration"`
	Segments   []TranscriptSegment `json:"segments,omitempty"`
	Words      []WordTiming        `json:"words,omitempty"`
	// Derived audio blob extracted from the source; diarization requires it
	AudioKey string `json:"audio_key,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	// "generated" or "placeholder" (provider unconfigured)
	Source string `json:"source,omitempty"`
}

// Value implements driver.Valuer for TranscriptPayload
func (p *TranscriptPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for TranscriptPayload
func (p *TranscriptPayload) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// ScoredTag is a content tag with a provider confidence
type ScoredTag struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// DetectedObject is an object spotted in the media at a timestamp
type DetectedObject struct {
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"`
}

// DetectedEmotion is an emotion spotted in the media at a timestamp
type DetectedEmotion struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"`
}

// AnalysisPayload is the result of the content analysis stage
type AnalysisPayload struct {
	Tags     []ScoredTag       `json:"tags,omitempty"`
	Objects  []DetectedObject  `json:"objects,omitempty"`
	Emotions []DetectedEmotion `json:"emotions,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	Themes   []string          `json:"themes,omitempty"`
	// "full" (visual + transcript) or "metadata" (title/description fallback)
	Source string `json:"source,omitempty"`
}

// Value implements driver.Valuer for AnalysisPayload
func (p *AnalysisPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for AnalysisPayload
func (p *AnalysisPayload) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// SpeakerSegment is one diarized span attributed to a speaker label
type SpeakerSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text,omitempty"`
}

// SentimentPoint is a sentiment score at a timestamp, score in [-1, 1]
type SentimentPoint struct {
	Timestamp float64 `json:"timestamp"`
	Score     float64 `json:"score"`
	Label     string  `json:"label"`
}

// TopicChapter is a topical chapter boundary with a short summary
type TopicChapter struct {
	Title   string  `json:"title"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Summary string  `json:"summary,omitempty"`
}

// Keyword is a key phrase with every timestamp it occurs at
type Keyword struct {
	Phrase     string    `json:"phrase"`
	Timestamps []float64 `json:"timestamps"`
}

// HighlightSegment is one span selected for the highlight reel
type HighlightSegment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Phrase string  `json:"phrase,omitempty"`
}

// HighlightReel tracks the detached highlight clip generation
type HighlightReel struct {
	Status    HighlightStatus    `json:"status"`
	OutputKey string             `json:"output_key,omitempty"`
	OutputURL string             `json:"output_url,omitempty"`
	Segments  []HighlightSegment `json:"segments,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// InsightCapabilities records which providers were actually configured when
// the insights fan-out ran, so consumers can tell "ran and found nothing"
// apart from "did not run"
type InsightCapabilities struct {
	Diarization bool `json:"diarization"`
	Sentiment   bool `json:"sentiment"`
	Topics      bool `json:"topics"`
	Keywords    bool `json:"keywords"`
}

// InsightsPayload is the result of the insights fan-out stage. Each
// sub-analysis writes its own field only.
type InsightsPayload struct {
	SpeakerSegments []SpeakerSegment    `json:"speaker_segments"`
	SentimentPoints []SentimentPoint    `json:"sentiment_points"`
	TopicChapters   []TopicChapter      `json:"topic_chapters"`
	Keywords        []Keyword           `json:"keywords"`
	Capabilities    InsightCapabilities `json:"capabilities"`
	HighlightReel   HighlightReel       `json:"highlight_reel"`
}

// Value implements driver.Valuer for InsightsPayload
func (p *InsightsPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for InsightsPayload
func (p *InsightsPayload) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// StringList is a JSON-encoded list of strings
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, l)
}

func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, target)
}

// Helper methods

// HasTranscriptText returns true if a usable transcript exists. The insights
// stage is gated on this.
func (m *MediaRecord) HasTranscriptText() bool {
	return m.Transcript != nil && strings.TrimSpace(m.Transcript.Text) != ""
}

// HasDerivedAudio returns true if an extracted audio blob exists. Diarization
// requires it in addition to transcript text.
func (m *MediaRecord) HasDerivedAudio() bool {
	return m.Transcript != nil && m.Transcript.AudioKey != ""
}

// IsTerminal returns true if the aggregate status cannot change anymore
// (highlight reel generation excluded; it is tracked independently)
func (m *MediaRecord) IsTerminal() bool {
	return m.Status == ProcessingStatusCompleted || m.Status == ProcessingStatusFailed
}

// StageStatusFor returns the status and last error of the named stage
func (m *MediaRecord) StageStatusFor(stage string) (StageStatus, string) {
	switch stage {
	case "transcription":
		return m.TranscriptionStatus, m.TranscriptionError
	case "analysis":
		return m.AnalysisStatus, m.AnalysisError
	case "insights":
		return m.InsightsStatus, m.InsightsError
	default:
		return "", ""
	}
}

// FailureSummary joins the per-stage errors into a single line for the
// aggregate record, most useful when every stage failed
func (m *MediaRecord) FailureSummary() string {
	var parts []string
	if m.TranscriptionStatus == StageStatusFailed && m.TranscriptionError != "" {
		parts = append(parts, "transcription: "+m.TranscriptionError)
	}
	if m.AnalysisStatus == StageStatusFailed && m.AnalysisError != "" {
		parts = append(parts, "analysis: "+m.AnalysisError)
	}
	if m.InsightsStatus == StageStatusFailed && m.InsightsError != "" {
		parts = append(parts, "insights: "+m.InsightsError)
	}
	if len(parts) == 0 {
		return "all pipeline stages failed"
	}
	return strings.Join(parts, "; ")
}

// MergeTags unions the given tags into the record's tag set, deduplicated
// and case-normalized to lower case. Returns the merged list.
func (m *MediaRecord) MergeTags(tags ...string) StringList {
	seen := make(map[string]bool, len(m.Tags)+len(tags))
	merged := make(StringList, 0, len(m.Tags)+len(tags))
	for _, t := range m.Tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		merged = append(merged, norm)
	}
	for _, t := range tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		merged = append(merged, norm)
	}
	m.Tags = merged
	return merged
}

// BlobKeys returns every blob key owned by this record, used when deletion
// cascades to derived artifacts
func (m *MediaRecord) BlobKeys() []string {
	var keys []string
	if m.SourceKey != "" {
		keys = append(keys, m.SourceKey)
	}
	if m.Transcript != nil && m.Transcript.AudioKey != "" {
		keys = append(keys, m.Transcript.AudioKey)
	}
	if m.Insights != nil && m.Insights.HighlightReel.OutputKey != "" {
		keys = append(keys, m.Insights.HighlightReel.OutputKey)
	}
	return keys
}
