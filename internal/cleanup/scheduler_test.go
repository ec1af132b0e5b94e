package cleanup

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduleRemovesFileAfterDelay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScheduler()
	defer s.Close()
	s.Schedule(path, 10*time.Millisecond)

	if got := s.Pending(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	waitFor(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
	waitFor(t, func() bool { return s.Pending() == 0 })
}

func TestScheduleMissingPathIsNoOp(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	s := NewScheduler()
	defer s.Close()
	s.remove = func(path string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return os.ErrNotExist
	}

	s.Schedule(filepath.Join(t.TempDir(), "gone.mp3"), time.Millisecond)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	})
}

func TestDuplicateScheduleIsHarmless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScheduler()
	defer s.Close()
	s.Schedule(path, time.Millisecond)
	s.Schedule(path, time.Millisecond)

	waitFor(t, func() bool { return s.Pending() == 0 })
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be removed")
	}
}

func TestCloseStopsPendingTimers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScheduler()
	s.Schedule(path, time.Hour)
	s.Close()

	if got := s.Pending(); got != 0 {
		t.Fatalf("pending after close = %d, want 0", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file must survive close: %v", err)
	}

	// Scheduling after close is ignored.
	s.Schedule(path, time.Millisecond)
	if got := s.Pending(); got != 0 {
		t.Fatalf("pending after closed schedule = %d, want 0", got)
	}
}

func TestEmptyPathIgnored(t *testing.T) {
	s := NewScheduler()
	defer s.Close()
	s.Schedule("", time.Millisecond)
	if got := s.Pending(); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}
