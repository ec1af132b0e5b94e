// Package cleanup removes transient working files after a fixed delay so
// delivered artifacts do not accumulate on disk.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/m3rciful/mediabot/core/logger"
)

// Scheduler owns all deferred deletions. Each Schedule call arms one timer;
// timers never hold the scheduler lock while waiting. Deleting a path that
// is already gone is a silent no-op, so duplicate schedules are harmless.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	nextID int64
	closed bool

	// remove is swappable in tests.
	remove func(string) error
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
		remove: os.Remove,
	}
}

// Schedule arranges for path to be deleted after delay if it still exists.
// It returns immediately. A non-positive delay deletes on the next timer
// tick.
func (s *Scheduler) Schedule(path string, delay time.Duration) {
	if path == "" {
		return
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.nextID++
	id := s.nextID
	timer := time.AfterFunc(delay, func() {
		s.fire(id, path)
	})
	s.timers[id] = timer
	s.mu.Unlock()
}

// Close stops all pending timers. Files not yet deleted stay on disk.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of armed deletions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(id int64, path string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	ctx := context.Background()
	err := s.remove(path)
	switch {
	case err == nil:
		logger.Debug(ctx, "cleanup", "cleanup.removed",
			slog.String("status", "ok"),
			slog.String("file", path),
		)
	case errors.Is(err, fs.ErrNotExist):
		// Already removed elsewhere; by contract not an error.
	default:
		logger.Warn(ctx, "cleanup", "cleanup.fail",
			slog.String("status", "fail"),
			slog.String("file", path),
			slog.String("err", err.Error()),
		)
	}
}
