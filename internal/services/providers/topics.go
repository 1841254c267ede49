package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clipforge/media-api/internal/models"
)

const topicsProviderName = "topics"

// TopicsClient segments a transcript into topical chapters and extracts
// keyword phrases. Both operations ride the same LLM-backed completion
// endpoint as the content analysis client.
type TopicsClient struct {
	analysis *AnalysisClient
}

// NewTopicsClient creates a topics/keywords client backed by the given
// analysis client
func NewTopicsClient(analysis *AnalysisClient) *TopicsClient {
	return &TopicsClient{analysis: analysis}
}

// Configured reports whether the topics capability is enabled
func (c *TopicsClient) Configured() bool {
	return c.analysis != nil && c.analysis.Configured()
}

// SegmentTopics splits the transcript into topical chapters
func (c *TopicsClient) SegmentTopics(ctx context.Context, segments []models.TranscriptSegment) ([]models.TopicChapter, error) {
	if !c.Configured() {
		return nil, Unconfigured(topicsProviderName)
	}

	prompt := fmt.Sprintf(
		"Split this timestamped transcript into topical chapters. Respond with a JSON object "+
			`{"chapters": [{"title","start","end","summary"}]} where start/end are seconds.`+
			"\nTranscript:\n%s", renderTimedTranscript(segments))

	var raw struct {
		Chapters []struct {
			Title   string  `json:"title"`
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Summary string  `json:"summary"`
		} `json:"chapters"`
	}
	if err := c.analysis.complete(ctx, prompt, &raw); err != nil {
		return nil, reclassify(err, topicsProviderName)
	}

	chapters := make([]models.TopicChapter, 0, len(raw.Chapters))
	for _, ch := range raw.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			continue
		}
		chapters = append(chapters, models.TopicChapter{
			Title:   strings.TrimSpace(ch.Title),
			Start:   ch.Start,
			End:     ch.End,
			Summary: strings.TrimSpace(ch.Summary),
		})
	}
	return chapters, nil
}

// ExtractKeywords extracts key phrases with every timestamp they occur at
func (c *TopicsClient) ExtractKeywords(ctx context.Context, segments []models.TranscriptSegment) ([]models.Keyword, error) {
	if !c.Configured() {
		return nil, Unconfigured(topicsProviderName)
	}

	prompt := fmt.Sprintf(
		"Extract up to 20 key phrases from this timestamped transcript. Respond with a JSON object "+
			`{"keywords": [{"phrase","timestamps"}]} where timestamps is a list of seconds the phrase occurs at.`+
			"\nTranscript:\n%s", renderTimedTranscript(segments))

	var raw struct {
		Keywords []json.RawMessage `json:"keywords"`
	}
	if err := c.analysis.complete(ctx, prompt, &raw); err != nil {
		return nil, reclassify(err, topicsProviderName)
	}

	// The provider occasionally returns bare phrase strings; normalize here
	keywords := make([]models.Keyword, 0, len(raw.Keywords))
	for _, item := range raw.Keywords {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				keywords = append(keywords, models.Keyword{Phrase: s, Timestamps: []float64{}})
			}
			continue
		}
		var kw models.Keyword
		if err := json.Unmarshal(item, &kw); err != nil {
			continue
		}
		kw.Phrase = strings.TrimSpace(kw.Phrase)
		if kw.Phrase == "" {
			continue
		}
		if kw.Timestamps == nil {
			kw.Timestamps = []float64{}
		}
		keywords = append(keywords, kw)
	}
	return keywords, nil
}

// renderTimedTranscript flattens segments into "[12.3s] text" lines, bounded
// for prompt size
func renderTimedTranscript(segments []models.TranscriptSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "[%.1fs] %s\n", seg.Start, strings.TrimSpace(seg.Text))
		if b.Len() > 8000 {
			break
		}
	}
	return b.String()
}

// reclassify re-labels an analysis-client error under this provider's name
// while preserving its kind
func reclassify(err error, provider string) error {
	var perr *Error
	if errors.As(err, &perr) {
		return &Error{Kind: perr.Kind, Provider: provider, Err: perr.Err}
	}
	return err
}
