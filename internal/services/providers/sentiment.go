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

const sentimentProviderName = "sentiment"

// SentimentConfig holds configuration for the sentiment scoring client
type SentimentConfig struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// SentimentClient scores transcript segments through an external sentiment
// service
type SentimentClient struct {
	httpClient *http.Client
	cfg        SentimentConfig
}

// NewSentimentClient creates a new sentiment client
func NewSentimentClient(cfg SentimentConfig) *SentimentClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &SentimentClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Configured reports whether the sentiment capability is enabled
func (c *SentimentClient) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.APIURL != ""
}

// ScoreSegments returns one sentiment point per transcript segment, scored
// in [-1, 1]
func (c *SentimentClient) ScoreSegments(ctx context.Context, segments []models.TranscriptSegment) ([]models.SentimentPoint, error) {
	if !c.Configured() {
		return nil, Unconfigured(sentimentProviderName)
	}
	if len(segments) == 0 {
		return []models.SentimentPoint{}, nil
	}

	type reqSegment struct {
		Start float64 `json:"start"`
		Text  string  `json:"text"`
	}
	reqSegments := make([]reqSegment, 0, len(segments))
	for _, seg := range segments {
		reqSegments = append(reqSegments, reqSegment{Start: seg.Start, Text: seg.Text})
	}

	reqBody, err := json.Marshal(map[string]interface{}{"segments": reqSegments})
	if err != nil {
		return nil, Terminal(sentimentProviderName, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, Terminal(sentimentProviderName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[DEBUG] Scoring sentiment for %d transcript segments", len(segments))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Transient(sentimentProviderName, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Sentiment API returned status %d", resp.StatusCode)
		return nil, classifyStatus(sentimentProviderName, resp.StatusCode)
	}

	var raw struct {
		Points []struct {
			Timestamp float64 `json:"timestamp"`
			Score     float64 `json:"score"`
			Label     string  `json:"label"`
		} `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, Terminal(sentimentProviderName, fmt.Errorf("decoding response: %w", err))
	}

	points := make([]models.SentimentPoint, 0, len(raw.Points))
	for _, p := range raw.Points {
		// Clamp out-of-range provider scores instead of rejecting the batch
		if p.Score > 1 {
			p.Score = 1
		} else if p.Score < -1 {
			p.Score = -1
		}
		points = append(points, models.SentimentPoint{
			Timestamp: p.Timestamp,
			Score:     p.Score,
			Label:     p.Label,
		})
	}
	return points, nil
}
