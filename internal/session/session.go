// Package session holds per-user dialogue state for one in-progress
// request cycle and the process-wide store that owns it.
package session

import (
	"github.com/m3rciful/mediabot/internal/media"
)

// Stage identifies the current position in the dialogue state machine.
// Stages advance strictly forward; only a reset returns to StageAwaitInput.
type Stage string

const (
	// StageAwaitInput waits for a media link or a search query.
	StageAwaitInput Stage = "await_input"
	// StageAwaitFilename waits for the output base name.
	StageAwaitFilename Stage = "await_filename"
	// StageAwaitFormat waits for an audio format selection.
	StageAwaitFormat Stage = "await_format"
	// StageAwaitTrim waits for an optional trim range or the skip keyword.
	StageAwaitTrim Stage = "await_trim"
	// StageRunning means the pipeline owns the session; dialogue events
	// for the user are refused until the run resets it.
	StageRunning Stage = "running"
)

// TrimRange is an inclusive start/end pair of human timestamps, stored
// verbatim as the user typed them.
type TrimRange struct {
	Start string
	End   string
}

// Session accumulates the choices of one request cycle.
type Session struct {
	Stage        Stage
	Locators     []string
	FilenameBase string
	Format       media.AudioFormat
	Trim         *TrimRange

	// SearchResults holds pending options shown to the user while the
	// session is still in StageAwaitInput.
	SearchResults []media.SearchResult
}

// Snapshot returns a deep copy safe to hand to another goroutine.
func (s *Session) Snapshot() Session {
	out := *s
	out.Locators = append([]string(nil), s.Locators...)
	out.SearchResults = append([]media.SearchResult(nil), s.SearchResults...)
	if s.Trim != nil {
		trim := *s.Trim
		out.Trim = &trim
	}
	return out
}
