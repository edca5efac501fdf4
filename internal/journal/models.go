package journal

import "time"

// Status is the final state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusDryRun    Status = "dry_run"
)

// Operations recorded by the CLI.
const (
	OperationCut     = "cut"
	OperationFilter  = "filter"
	OperationCopy    = "copy"
	OperationPublish = "publish"
)

// Run is one journal entry.
type Run struct {
	ID            string
	Operation     string
	Source        string
	Destination   string
	Episodes      int
	Frames        int
	AssetsCopied  int
	AssetsSkipped int
	BytesCopied   int64
	Status        Status
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration returns the elapsed time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
