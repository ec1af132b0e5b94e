package session

import "testing"

func TestGetReturnsIdleDefault(t *testing.T) {
	store := NewStore()
	sess := store.Get(1)
	if sess.Stage != StageAwaitInput {
		t.Fatalf("stage = %s, want %s", sess.Stage, StageAwaitInput)
	}
	if store.InProgress(1) {
		t.Fatal("fresh user should not be in progress")
	}
}

func TestUpdateCreatesAndAdvances(t *testing.T) {
	store := NewStore()
	store.Update(7, func(s *Session) {
		s.Locators = []string{"https://example.com/a"}
		s.Stage = StageAwaitFilename
	})

	if got := store.Stage(7); got != StageAwaitFilename {
		t.Fatalf("stage = %s, want %s", got, StageAwaitFilename)
	}
	if !store.InProgress(7) {
		t.Fatal("expected in-progress")
	}
	if store.InProgress(8) {
		t.Fatal("other user must not be affected")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.Update(7, func(s *Session) {
		s.Locators = []string{"a", "b"}
		s.Trim = &TrimRange{Start: "0:10", End: "0:20"}
	})

	snap := store.Get(7)
	snap.Locators[0] = "mutated"
	snap.Trim.Start = "9:99"

	again := store.Get(7)
	if again.Locators[0] != "a" {
		t.Fatalf("locator mutated through snapshot: %q", again.Locators[0])
	}
	if again.Trim.Start != "0:10" {
		t.Fatalf("trim mutated through snapshot: %q", again.Trim.Start)
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := NewStore()
	store.Update(7, func(s *Session) {
		s.Locators = []string{"a"}
		s.FilenameBase = "song"
		s.Stage = StageRunning
	})

	store.Reset(7)

	sess := store.Get(7)
	if sess.Stage != StageAwaitInput || len(sess.Locators) != 0 || sess.FilenameBase != "" {
		t.Fatalf("session not cleared: %+v", sess)
	}
}

func TestActiveCountsNonIdleOnly(t *testing.T) {
	store := NewStore()
	store.Update(1, func(s *Session) { s.Stage = StageAwaitFormat })
	store.Update(2, func(s *Session) { s.Stage = StageRunning })
	store.Update(3, func(s *Session) { s.SearchResults = nil }) // stays idle

	if got := store.Active(); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}
}
