// Package media defines the audio formats offered to users and the
// interfaces of the external retrieval and transcode backends.
package media

import (
	"context"
	"strings"
	"time"
)

// AudioFormat identifies one of the audio container formats a user may pick.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatM4A AudioFormat = "m4a"
	FormatOGG AudioFormat = "ogg"
	FormatWAV AudioFormat = "wav"
)

// Formats returns the selectable formats in presentation order.
func Formats() []AudioFormat {
	return []AudioFormat{FormatMP3, FormatM4A, FormatOGG, FormatWAV}
}

// ParseFormat maps a user-provided value onto a known format.
func ParseFormat(s string) (AudioFormat, bool) {
	switch AudioFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMP3:
		return FormatMP3, true
	case FormatM4A:
		return FormatM4A, true
	case FormatOGG:
		return FormatOGG, true
	case FormatWAV:
		return FormatWAV, true
	}
	return "", false
}

// SearchResult is one ranked (title, locator) pair returned by a Searcher.
type SearchResult struct {
	Title   string
	Locator string
}

// Searcher resolves a free-text query into ranked media locators.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// ProgressFunc receives percentage updates while a fetch is running.
type ProgressFunc func(percent float64)

// Fetcher retrieves the media behind a locator as a local audio file in the
// requested format. onProgress may be nil.
type Fetcher interface {
	Fetch(ctx context.Context, locator string, format AudioFormat, outputPath string, onProgress ProgressFunc) error
}

// Window selects the portion of the input a Transcoder should keep.
// Either Start/End (a trim range) or Duration (a clip from position zero)
// is set, never both.
type Window struct {
	Start    string
	End      string
	Duration time.Duration
}

// Transcoder produces outputPath from inputPath restricted to the window.
type Transcoder interface {
	Process(ctx context.Context, inputPath, outputPath string, w Window) error
}
