package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/models"
	mediaService "github.com/clipforge/media-api/internal/services/media"
)

// mockService is an in-memory media.Service for handler tests
type mockService struct {
	records    map[string]*models.MediaRecord
	triggerErr error
	triggered  []string
	deleted    []string
}

func newMockService(records ...*models.MediaRecord) *mockService {
	m := &mockService{records: make(map[string]*models.MediaRecord)}
	for _, rec := range records {
		m.records[rec.UUID] = rec
	}
	return m
}

func (m *mockService) CreateFromUpload(ctx context.Context, input mediaService.CreateInput, content io.Reader) (*models.MediaRecord, error) {
	rec := &models.MediaRecord{
		UUID:      "upload-uuid",
		Title:     input.Title,
		MimeType:  input.MimeType,
		SizeBytes: input.SizeBytes,
		Status:    models.ProcessingStatusPending,
	}
	m.records[rec.UUID] = rec
	return rec, nil
}

func (m *mockService) CreateFromURL(ctx context.Context, input mediaService.CreateInput, sourceURL string) (*models.MediaRecord, error) {
	if !strings.HasPrefix(sourceURL, "http") {
		return nil, mediaService.ErrInvalidInput
	}
	rec := &models.MediaRecord{
		UUID:      "url-uuid",
		Title:     input.Title,
		SourceURL: sourceURL,
		Status:    models.ProcessingStatusPending,
	}
	m.records[rec.UUID] = rec
	return rec, nil
}

func (m *mockService) GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error) {
	rec, ok := m.records[uuid]
	if !ok {
		return nil, mediaService.ErrMediaNotFound
	}
	return rec, nil
}

func (m *mockService) List(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaRecord, int64, error) {
	var out []models.MediaRecord
	for _, rec := range m.records {
		if ownerID == "" || rec.OwnerID == ownerID {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockService) TriggerProcessing(ctx context.Context, uuid string) error {
	if _, ok := m.records[uuid]; !ok {
		return mediaService.ErrMediaNotFound
	}
	if m.triggerErr != nil {
		return m.triggerErr
	}
	m.triggered = append(m.triggered, uuid)
	return nil
}

func (m *mockService) Delete(ctx context.Context, uuid string) error {
	if _, ok := m.records[uuid]; !ok {
		return mediaService.ErrMediaNotFound
	}
	delete(m.records, uuid)
	m.deleted = append(m.deleted, uuid)
	return nil
}

func setupRouter(svc mediaService.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	deps := &types.Dependencies{MediaService: svc}
	noop := func(c *gin.Context) { c.Next() }
	RegisterRoutes(router.Group("/api/v1/media"), deps, noop, noop)
	return router
}

func testRecord() *models.MediaRecord {
	return &models.MediaRecord{
		UUID:                "rec-1",
		Title:               "Quarterly review",
		Status:              models.ProcessingStatusCompleted,
		TranscriptionStatus: models.StageStatusCompleted,
		AnalysisStatus:      models.StageStatusFailed,
		AnalysisError:       "analysis provider rejected input",
		InsightsStatus:      models.StageStatusCompleted,
		Transcript: &models.TranscriptPayload{
			Text:     "welcome everyone",
			Language: "en",
			Source:   "generated",
		},
		Insights: &models.InsightsPayload{
			SpeakerSegments: []models.SpeakerSegment{},
			SentimentPoints: []models.SentimentPoint{},
			TopicChapters:   []models.TopicChapter{},
			Keywords:        []models.Keyword{},
			HighlightReel:   models.HighlightReel{Status: models.HighlightStatusReady, OutputKey: "highlights/rec-1/reel.mp4"},
		},
	}
}

func TestGet(t *testing.T) {
	router := setupRouter(newMockService(testRecord()))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/media/rec-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp types.SingleMediaResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Media)
		assert.Equal(t, "rec-1", resp.Media.UUID)
		assert.Equal(t, "completed", resp.Media.Status)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/media/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestList(t *testing.T) {
	router := setupRouter(newMockService(testRecord()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/media?limit=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp types.MediaListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Media, 1)
	assert.Equal(t, "rec-1", resp.Media[0].UUID)
}

func TestCreateFromURL(t *testing.T) {
	t.Run("accepted and queued", func(t *testing.T) {
		svc := newMockService()
		router := setupRouter(svc)

		body := `{"sourceUrl":"https://cdn.example.com/talk.mp4","title":"Talk"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/media", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []string{"url-uuid"}, svc.triggered)

		var resp types.SingleMediaResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, types.StatusQueued, resp.Status)
		require.NotNil(t, resp.Media)
		assert.Equal(t, "https://cdn.example.com/talk.mp4", resp.Media.SourceURL)
	})

	t.Run("missing source url", func(t *testing.T) {
		router := setupRouter(newMockService())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/media", strings.NewReader(`{"title":"no url"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateFromUpload(t *testing.T) {
	svc := newMockService()
	router := setupRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Uploaded clip"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"upload-uuid"}, svc.triggered)

	var resp types.SingleMediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Media)
	assert.Equal(t, "Uploaded clip", resp.Media.Title)
}

func TestGetStatus(t *testing.T) {
	router := setupRouter(newMockService(testRecord()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/media/rec-1/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp types.ProcessingStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp.UUID)
	assert.Equal(t, "completed", resp.Processing.Status)
	assert.Equal(t, "completed", resp.Processing.Transcription.Status)
	assert.Equal(t, "failed", resp.Processing.Analysis.Status)
	assert.Equal(t, "analysis provider rejected input", resp.Processing.Analysis.Error)
	assert.Equal(t, "ready", resp.Processing.Highlight.Status)
}

func TestGetTranscript(t *testing.T) {
	rec := testRecord()
	router := setupRouter(newMockService(rec))

	t.Run("available", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/media/rec-1/transcript", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp types.TranscriptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Transcript)
		assert.Equal(t, "welcome everyone", resp.Transcript.Text)
	})

	t.Run("not yet produced", func(t *testing.T) {
		bare := &models.MediaRecord{UUID: "rec-2", Status: models.ProcessingStatusPending}
		router := setupRouter(newMockService(bare))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/media/rec-2/transcript", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetInsights(t *testing.T) {
	router := setupRouter(newMockService(testRecord()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/media/rec-1/insights", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp types.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Insights)
	assert.Equal(t, models.HighlightStatusReady, resp.Insights.HighlightReel.Status)
}

func TestProcess(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		svc := newMockService(testRecord())
		router := setupRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/media/rec-1/process", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []string{"rec-1"}, svc.triggered)
	})

	t.Run("already running", func(t *testing.T) {
		svc := newMockService(testRecord())
		svc.triggerErr = mediaService.ErrAlreadyRunning
		router := setupRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/media/rec-1/process", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router := setupRouter(newMockService())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/media/missing/process", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDelete(t *testing.T) {
	svc := newMockService(testRecord())
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/v1/media/rec-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rec-1"}, svc.deleted)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/api/v1/media/rec-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
