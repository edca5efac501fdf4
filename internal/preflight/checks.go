package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"episodekit/internal/config"
	"episodekit/internal/episode"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTaskRoot verifies task root access and counts the episodes it holds.
// A task root without any episode directory fails.
func CheckTaskRoot(cfg *config.Config) Result {
	const name = "Task root"

	if strings.TrimSpace(cfg.Paths.TaskRoot) == "" {
		return Result{Name: name, Detail: "not configured (set paths.task_root or pass --task-root)"}
	}
	access := CheckDirectoryAccess(name, cfg.Paths.TaskRoot)
	if !access.Passed {
		return access
	}
	store := episode.NewStore(cfg.Paths.TaskRoot, cfg.EpisodeLayout())
	handles, err := store.List()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Paths.TaskRoot, err)}
	}
	if len(handles) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (no %s* episodes)", cfg.Paths.TaskRoot, cfg.Layout.EpisodePrefix)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d episodes, %s..%s)", cfg.Paths.TaskRoot, len(handles), handles[0].Name(), handles[len(handles)-1].Name()),
	}
}

// CheckJournal verifies the directory that holds the run journal.
func CheckJournal(cfg *config.Config) Result {
	const name = "Journal"

	if !cfg.Journal.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	dir := filepath.Dir(cfg.JournalPath())
	check := CheckDirectoryAccess(name, dir)
	if check.Passed {
		check.Detail = fmt.Sprintf("%s (directory writable)", cfg.JournalPath())
	}
	return check
}

// CheckPublish validates the publish settings without contacting the endpoint.
func CheckPublish(cfg *config.Config) Result {
	const name = "Publish"

	if !cfg.Publish.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	if strings.TrimSpace(cfg.Publish.Bucket) == "" {
		return Result{Name: name, Detail: "missing bucket"}
	}
	target := "s3://" + cfg.Publish.Bucket
	if cfg.Publish.Prefix != "" {
		target += "/" + strings.Trim(cfg.Publish.Prefix, "/")
	}
	endpoint := cfg.Publish.Endpoint
	if endpoint == "" {
		endpoint = "aws " + cfg.Publish.Region
	}
	creds := "default credential chain"
	if cfg.Publish.AccessKeyID != "" {
		creds = "static credentials"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s via %s (%s)", target, endpoint, creds)}
}
