package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// ExtractAudio derives a mono 16kHz WAV from the source media, suitable for
// transcription and diarization. Returns the path of the extracted file.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, tempDir string) (string, error) {
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	outFile, err := os.CreateTemp(tempDir, "audio_extract_*.wav")
	if err != nil {
		return "", NewProcessingError("temp_file_creation", inputPath, err, "")
	}
	outPath := outFile.Name()
	outFile.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-i", inputPath,
		"-vn",          // Drop any video stream
		"-ac", "1",     // Mono
		"-ar", "16000", // 16kHz, what speech models expect
		"-f", "wav",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", NewProcessingError("audio_extraction", inputPath, err, stderr.String())
	}

	return outPath, nil
}

// RenderHighlight concatenates the given spans of the source media into one
// output clip. Spans are rendered in order with re-encoding so cuts land on
// exact timestamps. Returns the path of the rendered file.
func (f *FFmpeg) RenderHighlight(ctx context.Context, inputPath string, spans []Span, tempDir string) (string, error) {
	if len(spans) == 0 {
		return "", ErrNoSegments
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// Cut each span to its own intermediate file, then concat
	partPaths := make([]string, 0, len(spans))
	defer func() {
		for _, p := range partPaths {
			os.Remove(p)
		}
	}()

	ext := filepath.Ext(inputPath)
	if ext == "" {
		ext = ".mp4"
	}

	for i, span := range spans {
		if span.End <= span.Start {
			return "", NewProcessingError("highlight_render", inputPath,
				fmt.Errorf("span %d has non-positive duration (%.2f..%.2f)", i, span.Start, span.End), "")
		}

		part, err := os.CreateTemp(tempDir, fmt.Sprintf("highlight_part_%d_*%s", i, ext))
		if err != nil {
			return "", NewProcessingError("temp_file_creation", inputPath, err, "")
		}
		partPath := part.Name()
		part.Close()
		partPaths = append(partPaths, partPath)

		args := []string{
			"-ss", fmt.Sprintf("%.3f", span.Start),
			"-to", fmt.Sprintf("%.3f", span.End),
			"-i", inputPath,
			"-y",
			partPath,
		}

		cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return "", NewProcessingError("highlight_cut", inputPath, err, stderr.String())
		}
	}

	// Build the concat list file
	listFile, err := os.CreateTemp(tempDir, "highlight_concat_*.txt")
	if err != nil {
		return "", NewProcessingError("temp_file_creation", inputPath, err, "")
	}
	listPath := listFile.Name()
	defer os.Remove(listPath)

	var list strings.Builder
	for _, p := range partPaths {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	if _, err := listFile.WriteString(list.String()); err != nil {
		listFile.Close()
		return "", NewProcessingError("concat_list", inputPath, err, "")
	}
	listFile.Close()

	outFile, err := os.CreateTemp(tempDir, "highlight_*"+ext)
	if err != nil {
		return "", NewProcessingError("temp_file_creation", inputPath, err, "")
	}
	outPath := outFile.Name()
	outFile.Close()

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", NewProcessingError("highlight_concat", inputPath, err, stderr.String())
	}

	return outPath, nil
}
