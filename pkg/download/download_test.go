package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewDownloader(t *testing.T) {
	options := DefaultOptions()
	downloader := NewDownloader(options)

	if downloader == nil {
		t.Fatal("NewDownloader returned nil")
	}

	if downloader.client == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if downloader.options.Timeout != options.Timeout {
		t.Errorf("Expected timeout %v, got %v", options.Timeout, downloader.options.Timeout)
	}
}

func TestDefaultOptions(t *testing.T) {
	options := DefaultOptions()

	if options.TempDir != "/tmp" {
		t.Errorf("Expected TempDir /tmp, got %v", options.TempDir)
	}

	if options.MaxSize != int64(2*1024*1024*1024) {
		t.Errorf("Expected MaxSize 2GB, got %v", options.MaxSize)
	}

	if options.Timeout != 10*time.Minute {
		t.Errorf("Expected Timeout 10m, got %v", options.Timeout)
	}

	if !options.ValidateMedia {
		t.Error("Expected ValidateMedia to default to true")
	}
}

func TestDownloadToTemp_Success(t *testing.T) {
	mediaData := strings.Repeat("media-data", 128) // 1280 bytes
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(mediaData))
	}))
	defer server.Close()

	options := DefaultOptions()
	options.TempDir = os.TempDir()
	downloader := NewDownloader(options)

	ctx := context.Background()
	result, err := downloader.DownloadToTemp(ctx, server.URL, "11111111-2222-3333-4444-555555555555")

	if err != nil {
		t.Fatalf("Expected successful download, got error: %v", err)
	}

	defer func() {
		_ = CleanupTempFile(result.FilePath)
	}()

	if result.ContentType != "video/mp4" {
		t.Errorf("Expected content type 'video/mp4', got %v", result.ContentType)
	}

	if result.ContentLength != 1280 {
		t.Errorf("Expected content length 1280, got %v", result.ContentLength)
	}

	// Verify file exists and has correct size
	if _, err := os.Stat(result.FilePath); os.IsNotExist(err) {
		t.Error("Downloaded file does not exist")
	}
}

func TestDownloadToTemp_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Forbidden"))
	}))
	defer server.Close()

	options := DefaultOptions()
	downloader := NewDownloader(options)

	ctx := context.Background()
	_, err := downloader.DownloadToTemp(ctx, server.URL, "media-403")

	if err == nil {
		t.Fatal("Expected error for 403 response, got nil")
	}

	if !strings.Contains(err.Error(), "server returned status 403") {
		t.Errorf("Expected status error, got: %v", err.Error())
	}
}

func TestDownloadToTemp_InvalidContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>Not media</html>"))
	}))
	defer server.Close()

	options := DefaultOptions()
	options.ValidateMedia = true
	downloader := NewDownloader(options)

	ctx := context.Background()
	_, err := downloader.DownloadToTemp(ctx, server.URL, "media-html")

	if err == nil {
		t.Fatal("Expected error for invalid content type, got nil")
	}

	if !strings.Contains(err.Error(), "invalid content type: text/html") {
		t.Errorf("Expected content type error, got: %v", err.Error())
	}
}

func TestDownloadToTemp_FileTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1000000000") // 1GB
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	options := DefaultOptions()
	options.MaxSize = 1024 // 1KB limit
	downloader := NewDownloader(options)

	ctx := context.Background()
	_, err := downloader.DownloadToTemp(ctx, server.URL, "media-large")

	if err == nil {
		t.Fatal("Expected error for file too large, got nil")
	}

	if !strings.Contains(err.Error(), "file too large") {
		t.Errorf("Expected file too large error, got: %v", err.Error())
	}
}

func TestIsMediaContentType(t *testing.T) {
	testCases := []struct {
		contentType string
		expected    bool
	}{
		{"audio/mpeg", true},
		{"audio/wav", true},
		{"video/mp4", true},
		{"VIDEO/MP4", true},                // Case insensitive
		{"application/octet-stream", true}, // Special case for some servers
		{"text/html", false},
		{"image/jpeg", false},
		{"application/json", false},
		{"", false},
	}

	for _, tc := range testCases {
		result := isMediaContentType(tc.contentType)
		if result != tc.expected {
			t.Errorf("isMediaContentType(%q) = %v, expected %v", tc.contentType, result, tc.expected)
		}
	}
}

func TestIsValidMediaExtension(t *testing.T) {
	testCases := []struct {
		ext      string
		expected bool
	}{
		{"mp3", true},
		{"MP4", true}, // Case insensitive
		{"m4a", true},
		{"mov", true},
		{"mkv", true},
		{"wav", true},
		{"webm", true},
		{"txt", false},
		{"html", false},
		{"", false},
	}

	for _, tc := range testCases {
		result := isValidMediaExtension(tc.ext)
		if result != tc.expected {
			t.Errorf("isValidMediaExtension(%q) = %v, expected %v", tc.ext, result, tc.expected)
		}
	}
}

func TestCleanupTempFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test_cleanup_*")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	filePath := tmpFile.Name()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Fatal("Temp file should exist before cleanup")
	}

	err = CleanupTempFile(filePath)
	if err != nil {
		t.Errorf("CleanupTempFile failed: %v", err)
	}

	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Error("Temp file should not exist after cleanup")
	}
}

func TestCleanupTempFile_EmptyPath(t *testing.T) {
	// Should handle empty path gracefully
	err := CleanupTempFile("")
	if err != nil {
		t.Errorf("CleanupTempFile with empty path should not error, got: %v", err)
	}
}

func TestCleanupOldTempFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "test_cleanup_old_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	oldFile, err := os.CreateTemp(tmpDir, "media_aaaa_*")
	if err != nil {
		t.Fatalf("Failed to create old file: %v", err)
	}
	oldFile.Close()

	newFile, err := os.CreateTemp(tmpDir, "media_bbbb_*")
	if err != nil {
		t.Fatalf("Failed to create new file: %v", err)
	}
	newFile.Close()

	// Make old file actually old by modifying its timestamp
	oldTime := time.Now().Add(-25 * time.Hour)
	_ = os.Chtimes(oldFile.Name(), oldTime, oldTime)

	err = CleanupOldTempFiles(tmpDir, 24*time.Hour)
	if err != nil {
		t.Errorf("CleanupOldTempFiles failed: %v", err)
	}

	if _, err := os.Stat(oldFile.Name()); !os.IsNotExist(err) {
		t.Error("Old file should have been cleaned up")
	}

	if _, err := os.Stat(newFile.Name()); os.IsNotExist(err) {
		t.Error("New file should still exist")
	}
}
