package materialize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrDestinationBusy reports a destination locked by another process.
var ErrDestinationBusy = errors.New("destination is being written by another process")

type destinationLock struct {
	path string
	lock *flock.Flock
}

// lockPath names the lock for dest inside dir. The digest keeps equally named
// episodes in different datasets apart.
func lockPath(dir, dest string) string {
	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, fmt.Sprintf("%s-%s.lock", filepath.Base(abs), hex.EncodeToString(sum[:4])))
}

func acquireLock(dir, dest string) (*destinationLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := lockPath(dir, dest)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (lock %s)", ErrDestinationBusy, dest, path)
	}
	return &destinationLock{path: path, lock: lock}, nil
}

// release unlocks but keeps the lock file. Unlinking it here would let a
// waiter holding the old inode and a newcomer creating a fresh file both
// believe they own the destination; CleanStaleLocks removes idle files.
func (l *destinationLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
