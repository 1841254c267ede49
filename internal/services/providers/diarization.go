package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/clipforge/media-api/internal/models"
)

const diarizationProviderName = "diarization"

// DiarizationConfig holds configuration for the speaker diarization client
type DiarizationConfig struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// DiarizationClient calls an external speaker diarization service
type DiarizationClient struct {
	httpClient *http.Client
	cfg        DiarizationConfig
}

// NewDiarizationClient creates a new diarization client
func NewDiarizationClient(cfg DiarizationConfig) *DiarizationClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &DiarizationClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Configured reports whether the diarization capability is enabled
func (c *DiarizationClient) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.APIURL != ""
}

// Diarize submits the audio URL and returns speaker-attributed segments
func (c *DiarizationClient) Diarize(ctx context.Context, audioURL string) ([]models.SpeakerSegment, error) {
	if !c.Configured() {
		return nil, Unconfigured(diarizationProviderName)
	}
	if audioURL == "" {
		return nil, Terminal(diarizationProviderName, fmt.Errorf("audio URL is required"))
	}

	reqBody, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return nil, Terminal(diarizationProviderName, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, Terminal(diarizationProviderName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[DEBUG] Requesting diarization for %s", audioURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Transient(diarizationProviderName, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Diarization API returned status %d", resp.StatusCode)
		return nil, classifyStatus(diarizationProviderName, resp.StatusCode)
	}

	var raw struct {
		Segments []struct {
			Speaker string  `json:"speaker"`
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Text    string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, Terminal(diarizationProviderName, fmt.Errorf("decoding response: %w", err))
	}

	segments := make([]models.SpeakerSegment, 0, len(raw.Segments))
	for _, seg := range raw.Segments {
		if seg.Speaker == "" {
			seg.Speaker = "SPEAKER_00"
		}
		segments = append(segments, models.SpeakerSegment{
			Speaker: seg.Speaker,
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
		})
	}
	return segments, nil
}
