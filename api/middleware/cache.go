package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/internal/services/cache"
)

// CacheConfig tunes the GET response cache
type CacheConfig struct {
	Cache      cache.Cache
	DefaultTTL time.Duration
	Enabled    bool
}

// cachedResponse is the stored form of one successful GET response
type cachedResponse struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	ETag        string    `json:"etag"`
	StoredAt    time.Time `json:"stored_at"`
}

// bodyCapture mirrors the response body into a buffer while it streams out
type bodyCapture struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bodyCapture) Write(data []byte) (int, error) {
	w.buf.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCapture) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// CacheMiddleware re-serves successful GET responses from the cache.
// Transcript and insights payloads never change after a run settles, so a
// short TTL trades at most a few seconds of staleness while a record is
// reprocessing for skipping the JSON round trip on polls.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.Cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if clientRefusesCached(c.Request) {
			c.Header("X-Cache", "BYPASS")
			c.Next()
			return
		}

		key := responseKey(c.Request)
		if data, ok := cfg.Cache.Get(context.Background(), key); ok {
			var stored cachedResponse
			if err := json.Unmarshal(data, &stored); err == nil {
				c.Header("X-Cache", "HIT")
				c.Header("ETag", stored.ETag)
				c.Header("Age", fmt.Sprintf("%d", int(time.Since(stored.StoredAt).Seconds())))
				c.Data(stored.Status, stored.ContentType, stored.Body)
				c.Abort()
				return
			}
		}

		c.Header("X-Cache", "MISS")
		capture := &bodyCapture{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = capture

		c.Next()

		// Only settled 200s are worth keeping
		if capture.status != http.StatusOK || capture.buf.Len() == 0 {
			return
		}
		stored := cachedResponse{
			Status:      capture.status,
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.buf.Bytes(),
			ETag:        entityTag(capture.buf.Bytes()),
			StoredAt:    time.Now(),
		}
		if data, err := json.Marshal(stored); err == nil {
			_ = cfg.Cache.Set(context.Background(), key, data, cfg.DefaultTTL)
		}
	}
}

// clientRefusesCached honors Cache-Control no-cache/no-store and the legacy
// Pragma header
func clientRefusesCached(req *http.Request) bool {
	if req.Header.Get("Pragma") == "no-cache" {
		return true
	}
	for _, directive := range strings.Split(req.Header.Get("Cache-Control"), ",") {
		switch strings.TrimSpace(strings.ToLower(directive)) {
		case "no-cache", "no-store", "max-age=0":
			return true
		}
	}
	return false
}

// responseKey builds the cache key from the path and the canonical query
// string; url.Values.Encode sorts keys, so parameter order never splits
// entries
func responseKey(req *http.Request) string {
	if req.URL.RawQuery == "" {
		return "resp:" + req.URL.Path
	}
	return "resp:" + req.URL.Path + "?" + req.URL.Query().Encode()
}

func entityTag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
