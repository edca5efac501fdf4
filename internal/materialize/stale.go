package materialize

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"episodekit/internal/logging"
)

// CleanupResult contains the outcome of a lock directory cleanup.
type CleanupResult struct {
	Removed []string
	// Held lists lock files owned by a running materialization.
	Held   []string
	Errors []CleanupError
}

// CleanupError pairs a lock file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStaleLocks removes lock files in lockDir left behind by interrupted
// runs. A lock file that another process still holds is left in place.
func CleanStaleLocks(lockDir string, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}
	logger = logging.NewComponentLogger(logger, "materialize")

	lockDir = strings.TrimSpace(lockDir)
	if lockDir == "" {
		return result
	}
	entries, err := os.ReadDir(lockDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: lockDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != ".lock" {
			continue
		}
		path := filepath.Join(lockDir, entry.Name())
		lock := flock.New(path)
		ok, err := lock.TryLock()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !ok {
			_ = lock.Close()
			result.Held = append(result.Held, path)
			continue
		}
		removeErr := os.Remove(path)
		_ = lock.Unlock()
		if removeErr != nil && !os.IsNotExist(removeErr) {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: removeErr})
			logging.WarnWithContext(logger, "failed to remove stale lock", "lock_cleanup_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(removeErr),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale lock",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "lock_cleanup"),
		)
	}
	return result
}
