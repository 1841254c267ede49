package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/media-api/internal/models"
)

// chatServer wraps the given JSON content in a chat-completions response
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestAnalyzeNormalizesLooseShapes(t *testing.T) {
	// Tags arrive as a mix of bare strings and objects with either "tag" or
	// "name" keys; objects and emotions mix strings and typed entries
	server := chatServer(t, `{
		"tags": ["Rocketry", {"tag": "Space", "confidence": 0.9}, {"name": "orbit"}, "rocketry", ""],
		"objects": ["rocket", {"object": "launchpad", "confidence": 0.7, "timestamp": 12}],
		"emotions": [{"emotion": "excitement", "confidence": 0.8, "timestamp": 3}, "awe"],
		"summary": "  A rocket launch recap.  ",
		"themes": ["space exploration"]
	}`)
	defer server.Close()

	client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
	payload, err := client.Analyze(context.Background(), "http://blobs/video.mp4", "full transcript text")
	require.NoError(t, err)

	assert.Equal(t, "A rocket launch recap.", payload.Summary)
	assert.Equal(t, []string{"space exploration"}, payload.Themes)
	assert.Equal(t, "full", payload.Source)

	// Deduplicated, lower-cased, defaults applied
	require.Len(t, payload.Tags, 3)
	assert.Equal(t, models.ScoredTag{Tag: "rocketry", Confidence: 1.0}, payload.Tags[0])
	assert.Equal(t, models.ScoredTag{Tag: "space", Confidence: 0.9}, payload.Tags[1])
	assert.Equal(t, models.ScoredTag{Tag: "orbit", Confidence: 1.0}, payload.Tags[2])

	require.Len(t, payload.Objects, 2)
	assert.Equal(t, models.DetectedObject{Object: "rocket", Confidence: 1.0}, payload.Objects[0])
	assert.Equal(t, models.DetectedObject{Object: "launchpad", Confidence: 0.7, Timestamp: 12}, payload.Objects[1])

	require.Len(t, payload.Emotions, 2)
	assert.Equal(t, "excitement", payload.Emotions[0].Emotion)
	assert.Equal(t, models.DetectedEmotion{Emotion: "awe", Confidence: 1.0}, payload.Emotions[1])
}

func TestAnalyzeWithoutTranscriptIsMetadataSourced(t *testing.T) {
	server := chatServer(t, `{"summary": "metadata only", "tags": []}`)
	defer server.Close()

	client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
	payload, err := client.Analyze(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "metadata", payload.Source)
}

func TestAnalyzeUnconfigured(t *testing.T) {
	client := NewAnalysisClient(AnalysisConfig{})
	assert.False(t, client.Configured())

	_, err := client.Analyze(context.Background(), "", "text")
	assert.True(t, IsUnconfigured(err))

	_, err = client.GenerateTags(context.Background(), "t", "d", "x")
	assert.True(t, IsUnconfigured(err))
}

func TestGenerateTags(t *testing.T) {
	server := chatServer(t, `{"tags": ["space", {"tag": "Rocketry"}, "space"]}`)
	defer server.Close()

	client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
	tags, err := client.GenerateTags(context.Background(), "Launch", "recap", "transcript")
	require.NoError(t, err)
	assert.Equal(t, []string{"space", "rocketry"}, tags)
}

func TestAnalyzeStatusClassification(t *testing.T) {
	for _, tt := range []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusServiceUnavailable, KindTransient},
		{http.StatusForbidden, KindTerminal},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
		_, err := client.Analyze(context.Background(), "", "text")
		require.Error(t, err)
		assert.Equal(t, tt.kind, KindOf(err), "status %d", tt.status)

		server.Close()
	}
}

func TestAnalyzeRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
	_, err := client.Analyze(context.Background(), "", "text")
	require.Error(t, err)
	assert.Equal(t, KindTerminal, KindOf(err))
}

func TestAnalyzeRejectsNonJSONContent(t *testing.T) {
	server := chatServer(t, "I'm sorry, I can't respond in JSON")
	defer server.Close()

	client := NewAnalysisClient(AnalysisConfig{APIKey: "k", APIURL: server.URL})
	_, err := client.Analyze(context.Background(), "", "text")
	require.Error(t, err)
	assert.Equal(t, KindTerminal, KindOf(err))
}

func TestFallbackAnalysis(t *testing.T) {
	payload := FallbackAnalysis("Launch", "liftoff footage")
	assert.Equal(t, "Launch: liftoff footage", payload.Summary)
	assert.Equal(t, "metadata", payload.Source)

	payload = FallbackAnalysis("Launch", "")
	assert.Equal(t, "Launch", payload.Summary)
}
