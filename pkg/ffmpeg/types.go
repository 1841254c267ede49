package ffmpeg

// MediaMetadata represents metadata extracted from a media file
type MediaMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds
	SampleRate int     `json:"sample_rate"` // Audio sample rate in Hz
	Channels   int     `json:"channels"`    // Number of audio channels
	Bitrate    int     `json:"bitrate"`     // Bitrate in bits per second
	Format     string  `json:"format"`      // Container format (mp4, mp3, mkv, ...)
	AudioCodec string  `json:"audio_codec"` // Audio codec
	VideoCodec string  `json:"video_codec"` // Video codec, empty for audio-only media
	Width      int     `json:"width"`       // Video width in pixels
	Height     int     `json:"height"`      // Video height in pixels
	Size       int64   `json:"size"`        // File size in bytes
	Title      string  `json:"title"`       // Title metadata
}

// HasVideo returns true if the media carries a video stream
func (m *MediaMetadata) HasVideo() bool {
	return m.VideoCodec != ""
}

// Span is one (start, end) cut used when rendering a highlight clip
type Span struct {
	Start float64
	End   float64
}
