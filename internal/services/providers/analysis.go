package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/clipforge/media-api/internal/models"
)

const analysisProviderName = "analysis"

// AnalysisConfig holds configuration for the LLM-backed content analysis
// client
type AnalysisConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// AnalysisClient calls an LLM-backed content analysis API. It is the
// normalization boundary: the provider returns loosely-typed shapes (tags as
// bare strings or {tag, confidence} objects) and only canonical typed values
// leave this package.
type AnalysisClient struct {
	httpClient *http.Client
	cfg        AnalysisConfig
}

// NewAnalysisClient creates a new content analysis client
func NewAnalysisClient(cfg AnalysisConfig) *AnalysisClient {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &AnalysisClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Configured reports whether the analysis capability is enabled
func (c *AnalysisClient) Configured() bool {
	return c.cfg.APIKey != ""
}

// looseAnalysis mirrors the provider's response; several fields arrive in
// inconsistent shapes across model versions
type looseAnalysis struct {
	Tags     []json.RawMessage `json:"tags"`
	Objects  []json.RawMessage `json:"objects"`
	Emotions []json.RawMessage `json:"emotions"`
	Summary  string            `json:"summary"`
	Themes   []string          `json:"themes"`
}

// Analyze runs content analysis over the visual reference and transcript text
func (c *AnalysisClient) Analyze(ctx context.Context, visualURL, transcriptText string) (*models.AnalysisPayload, error) {
	if !c.Configured() {
		return nil, Unconfigured(analysisProviderName)
	}

	prompt := buildAnalysisPrompt(visualURL, transcriptText)

	var raw looseAnalysis
	if err := c.complete(ctx, prompt, &raw); err != nil {
		return nil, err
	}

	payload := &models.AnalysisPayload{
		Summary: strings.TrimSpace(raw.Summary),
		Themes:  raw.Themes,
		Source:  "full",
	}
	if transcriptText == "" {
		payload.Source = "metadata"
	}
	payload.Tags = normalizeScoredTags(raw.Tags)
	payload.Objects = normalizeObjects(raw.Objects)
	payload.Emotions = normalizeEmotions(raw.Emotions)

	return payload, nil
}

// GenerateTags asks the provider for short content tags based on the title,
// description and transcript
func (c *AnalysisClient) GenerateTags(ctx context.Context, title, description, transcriptText string) ([]string, error) {
	if !c.Configured() {
		return nil, Unconfigured(analysisProviderName)
	}

	prompt := fmt.Sprintf(
		"Generate up to 10 short lowercase content tags as a JSON object {\"tags\": [...]} for this media.\nTitle: %s\nDescription: %s\nTranscript excerpt: %s",
		title, description, truncate(transcriptText, 4000))

	var raw struct {
		Tags []json.RawMessage `json:"tags"`
	}
	if err := c.complete(ctx, prompt, &raw); err != nil {
		return nil, err
	}

	scored := normalizeScoredTags(raw.Tags)
	tags := make([]string, 0, len(scored))
	for _, t := range scored {
		tags = append(tags, t.Tag)
	}
	return tags, nil
}

// chatRequest / chatResponse follow the chat-completions wire format
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one chat completion and decodes its JSON content into out
func (c *AnalysisClient) complete(ctx context.Context, prompt string, out interface{}) error {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a media content analyst. Respond with JSON only."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return Terminal(analysisProviderName, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(encoded))
	if err != nil {
		return Terminal(analysisProviderName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transient(analysisProviderName, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Analysis API returned status %d", resp.StatusCode)
		return classifyStatus(analysisProviderName, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return Terminal(analysisProviderName, fmt.Errorf("decoding response: %w", err))
	}
	if len(chat.Choices) == 0 {
		return Terminal(analysisProviderName, fmt.Errorf("response contained no choices"))
	}

	content := chat.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return Terminal(analysisProviderName, fmt.Errorf("parsing analysis content: %w", err))
	}
	return nil
}

func buildAnalysisPrompt(visualURL, transcriptText string) string {
	var b strings.Builder
	b.WriteString("Analyze this media and respond with a JSON object with keys ")
	b.WriteString(`"tags" (list of {"tag","confidence"}), "objects" (list of {"object","confidence","timestamp"}), `)
	b.WriteString(`"emotions" (list of {"emotion","confidence","timestamp"}), "summary" (string), "themes" (list of strings).`)
	if visualURL != "" {
		b.WriteString("\nMedia location: ")
		b.WriteString(visualURL)
	}
	if transcriptText != "" {
		b.WriteString("\nTranscript: ")
		b.WriteString(truncate(transcriptText, 8000))
	} else {
		b.WriteString("\nNo transcript is available; analyze from the metadata only.")
	}
	return b.String()
}

// normalizeScoredTags accepts tags as bare strings or {tag, confidence}
// objects and returns the canonical shape, deduplicated and lower-cased
func normalizeScoredTags(raw []json.RawMessage) []models.ScoredTag {
	seen := make(map[string]bool, len(raw))
	tags := make([]models.ScoredTag, 0, len(raw))

	for _, item := range raw {
		var tag models.ScoredTag

		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			tag = models.ScoredTag{Tag: s, Confidence: 1.0}
		} else {
			var obj struct {
				Tag        string  `json:"tag"`
				Name       string  `json:"name"`
				Confidence float64 `json:"confidence"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				continue
			}
			name := obj.Tag
			if name == "" {
				name = obj.Name
			}
			conf := obj.Confidence
			if conf == 0 {
				conf = 1.0
			}
			tag = models.ScoredTag{Tag: name, Confidence: conf}
		}

		tag.Tag = strings.ToLower(strings.TrimSpace(tag.Tag))
		if tag.Tag == "" || seen[tag.Tag] {
			continue
		}
		seen[tag.Tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func normalizeObjects(raw []json.RawMessage) []models.DetectedObject {
	objects := make([]models.DetectedObject, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				objects = append(objects, models.DetectedObject{Object: s, Confidence: 1.0})
			}
			continue
		}
		var obj models.DetectedObject
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if obj.Object == "" {
			continue
		}
		if obj.Confidence == 0 {
			obj.Confidence = 1.0
		}
		objects = append(objects, obj)
	}
	return objects
}

func normalizeEmotions(raw []json.RawMessage) []models.DetectedEmotion {
	emotions := make([]models.DetectedEmotion, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				emotions = append(emotions, models.DetectedEmotion{Emotion: s, Confidence: 1.0})
			}
			continue
		}
		var emo models.DetectedEmotion
		if err := json.Unmarshal(item, &emo); err != nil {
			continue
		}
		if emo.Emotion == "" {
			continue
		}
		if emo.Confidence == 0 {
			emo.Confidence = 1.0
		}
		emotions = append(emotions, emo)
	}
	return emotions
}

// FallbackAnalysis builds the metadata-only analysis used when the analysis
// capability is unconfigured
func FallbackAnalysis(title, description string) *models.AnalysisPayload {
	summary := strings.TrimSpace(title)
	if description != "" {
		summary = strings.TrimSpace(summary + ": " + description)
	}
	return &models.AnalysisPayload{
		Summary: summary,
		Source:  "metadata",
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
