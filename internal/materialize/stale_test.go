package materialize

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gofrs/flock"
)

func TestCleanStaleLocksInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", filepath.Join(t.TempDir(), "missing")} {
		result := CleanStaleLocks(dir, nil)
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleLocksKeepsHeldLocks(t *testing.T) {
	dir := t.TempDir()
	stale := lockPath(dir, "/data/pick_toy/episode_0001")
	if err := os.WriteFile(stale, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	held, err := acquireLock(dir, "/data/pick_toy/episode_0002")
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer held.release()

	result := CleanStaleLocks(dir, nil)
	if !slices.Equal(result.Removed, []string{stale}) {
		t.Fatalf("removed = %v, want %v", result.Removed, []string{stale})
	}
	if !slices.Equal(result.Held, []string{held.path}) {
		t.Fatalf("held = %v", result.Held)
	}
	if _, err := os.Stat(held.path); err != nil {
		t.Fatalf("held lock removed: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("non-lock file removed: %v", err)
	}
}

func TestAcquireLockBusy(t *testing.T) {
	dir := t.TempDir()
	first, err := acquireLock(dir, "/data/episode_0001")
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer first.release()

	other := flock.New(first.path)
	if ok, _ := other.TryLock(); ok {
		t.Fatal("second flock acquired a held lock")
	}
	if _, err := acquireLock(dir, "/data/episode_0001"); err == nil {
		t.Fatal("expected ErrDestinationBusy")
	}
}
