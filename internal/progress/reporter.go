// Package progress adapts fetch progress callbacks into throttled edits of
// a status message.
package progress

import (
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the minimum time between two status edits.
const DefaultInterval = 1500 * time.Millisecond

// Reporter reflects monotonic percentage updates onto a user-visible
// status message, at most once per interval. Edit failures are swallowed:
// a deleted or rate-limited status message must never interrupt a fetch.
type Reporter struct {
	edit     func(text string) error
	interval time.Duration

	mu       sync.Mutex
	lastEdit time.Time
}

// NewReporter binds a reporter to an edit function. A non-positive
// interval falls back to DefaultInterval.
func NewReporter(edit func(text string) error, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{edit: edit, interval: interval}
}

// Update pushes one progress tick. Ticks arriving before the interval has
// elapsed since the last edit are dropped.
func (r *Reporter) Update(percent float64) {
	if r.edit == nil {
		return
	}

	r.mu.Lock()
	now := time.Now()
	if !r.lastEdit.IsZero() && now.Sub(r.lastEdit) < r.interval {
		r.mu.Unlock()
		return
	}
	r.lastEdit = now
	r.mu.Unlock()

	// Best effort; the status message may be gone.
	_ = r.edit(fmt.Sprintf("⏬ Downloading... %.1f%%", percent))
}
