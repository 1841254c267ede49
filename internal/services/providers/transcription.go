package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/clipforge/media-api/internal/models"
)

const transcriptionProviderName = "transcription"

// TranscriptionConfig holds configuration for the Whisper-compatible
// transcription API client
type TranscriptionConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	Language    string
	Temperature float64
	Timeout     time.Duration
}

// TranscriptionClient calls a Whisper-compatible HTTP transcription API
type TranscriptionClient struct {
	httpClient *http.Client
	cfg        TranscriptionConfig
}

// NewTranscriptionClient creates a new transcription API client
func NewTranscriptionClient(cfg TranscriptionConfig) *TranscriptionClient {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.openai.com/v1/audio/transcriptions"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &TranscriptionClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Configured reports whether the transcription capability is enabled
func (c *TranscriptionClient) Configured() bool {
	return c.cfg.APIKey != ""
}

// verboseTranscription mirrors the provider's verbose JSON response shape
type verboseTranscription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
		// avg_logprob is the only confidence signal the API exposes
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe uploads the audio file and returns the parsed transcript
func (c *TranscriptionClient) Transcribe(ctx context.Context, audioPath string) (*models.TranscriptPayload, error) {
	if !c.Configured() {
		return nil, Unconfigured(transcriptionProviderName)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("opening audio file: %w", err))
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("building multipart form: %w", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("copying audio into form: %w", err))
	}

	_ = writer.WriteField("model", c.cfg.Model)
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("timestamp_granularities[]", "segment")
	_ = writer.WriteField("timestamp_granularities[]", "word")
	if c.cfg.Language != "" {
		_ = writer.WriteField("language", c.cfg.Language)
	}
	if c.cfg.Temperature > 0 {
		_ = writer.WriteField("temperature", fmt.Sprintf("%g", c.cfg.Temperature))
	}
	if err := writer.Close(); err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("closing multipart form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, &body)
	if err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[DEBUG] Transcribing %s via %s (model: %s)", filepath.Base(audioPath), c.cfg.APIURL, c.cfg.Model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Transient(transcriptionProviderName, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Transcription API returned status %d", resp.StatusCode)
		return nil, classifyStatus(transcriptionProviderName, resp.StatusCode)
	}

	var raw verboseTranscription
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, Terminal(transcriptionProviderName, fmt.Errorf("decoding response: %w", err))
	}

	return normalizeTranscription(&raw), nil
}

// normalizeTranscription converts the provider response into the canonical
// transcript shape
func normalizeTranscription(raw *verboseTranscription) *models.TranscriptPayload {
	payload := &models.TranscriptPayload{
		Text:     raw.Text,
		Language: raw.Language,
		Duration: raw.Duration,
		Source:   "generated",
	}

	var logprobSum float64
	for _, seg := range raw.Segments {
		payload.Segments = append(payload.Segments, models.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
		logprobSum += seg.AvgLogprob
	}
	if n := len(raw.Segments); n > 0 {
		// Rough confidence from mean log probability, clamped to [0, 1]
		conf := 1.0 + logprobSum/float64(n)
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		payload.Confidence = conf
	}

	for _, w := range raw.Words {
		payload.Words = append(payload.Words, models.WordTiming{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}

	return payload
}

// PlaceholderTranscript returns the deterministic fallback used when the
// transcription capability is unconfigured, keeping the pipeline usable in
// degraded and development environments
func PlaceholderTranscript(title string) *models.TranscriptPayload {
	return &models.TranscriptPayload{
		Text:   fmt.Sprintf("[transcription unavailable for %q: provider not configured]", title),
		Source: "placeholder",
	}
}
