package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"episodekit/internal/assetref"
	"episodekit/internal/episode"
	"episodekit/internal/fileutil"
	"episodekit/internal/logging"
)

// Options controls a materialization.
type Options struct {
	// SourceRoot is the source episode directory that reference paths are relative to.
	SourceRoot string
	// MetadataName is the metadata file name; defaults to data.json.
	MetadataName       string
	CopyAuxiliaryFiles bool
	KeepStreamDirs     bool
	VerifyCopies       bool
	PreserveTimes      bool
	// LockDir, when set, holds an exclusive lock file for the destination.
	LockDir  string
	Logger   *slog.Logger
	Progress func(done, total int)
}

// CheckDestination fails with DestinationExists when dest is a non-empty
// directory or a file. A missing or empty directory is accepted.
func CheckDestination(dest string) error {
	info, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat destination: %w", err)
	}
	if !info.IsDir() {
		return episode.DestinationExists(dest)
	}
	empty, err := fileutil.IsEmptyDir(dest)
	if err != nil {
		return fmt.Errorf("read destination: %w", err)
	}
	if !empty {
		return episode.DestinationExists(dest)
	}
	return nil
}

// Clear removes dest and everything under it. It is never called implicitly.
func Clear(dest string) error {
	if dest == "" || filepath.Clean(dest) == string(filepath.Separator) {
		return fmt.Errorf("refusing to clear %q", dest)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}
	return nil
}

// Materialize writes ep and the assets in refs to dest.
func Materialize(dest string, ep *episode.Episode, refs assetref.Set, opts Options) (Report, error) {
	report := Report{Destination: dest, Frames: ep.Len()}
	if ep.Len() == 0 {
		return report, episode.EmptyEpisode(dest)
	}
	if err := CheckDestination(dest); err != nil {
		return report, err
	}
	metadataName := opts.MetadataName
	if metadataName == "" {
		metadataName = episode.DefaultMetadataName
	}
	logger := logging.NewComponentLogger(opts.Logger, "materialize").With(
		logging.String(logging.FieldDestination, dest),
	)

	if opts.LockDir != "" {
		lock, err := acquireLock(opts.LockDir, dest)
		if err != nil {
			return report, err
		}
		defer func() {
			if err := lock.release(); err != nil {
				logging.WarnWithContext(logger, "failed to release destination lock", "lock_release_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove the stale lock file manually"),
					logging.String(logging.FieldImpact, "a later run against this destination may report it busy"),
				)
			}
		}()
		// Another process may have populated dest while we waited for the lock.
		if err := CheckDestination(dest); err != nil {
			return report, err
		}
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return report, fmt.Errorf("create destination: %w", err)
	}
	if opts.KeepStreamDirs {
		for _, section := range episode.StreamSections {
			if err := os.MkdirAll(filepath.Join(dest, section), 0o755); err != nil {
				return report, fmt.Errorf("create %s directory: %w", section, err)
			}
		}
	}

	copyOpts := fileutil.CopyOptions{Verify: opts.VerifyCopies, PreserveTimes: opts.PreserveTimes}
	if opts.CopyAuxiliaryFiles {
		if err := copyAuxiliary(&report, dest, metadataName, opts.SourceRoot, copyOpts); err != nil {
			return report, err
		}
	}

	paths := refs.Sorted()
	for i, rel := range paths {
		result, err := copyAsset(logger, dest, opts.SourceRoot, rel, copyOpts)
		if err != nil {
			return report, err
		}
		report.Assets = append(report.Assets, result)
		report.Bytes += result.Bytes
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
	}

	handle := episode.Handle{Dir: dest, MetadataName: metadataName}
	if err := episode.Save(handle, ep); err != nil {
		return report, err
	}
	logger.Debug("episode materialized",
		logging.Int("frames", report.Frames),
		logging.Int("assets_copied", report.Copied()),
		logging.Int("assets_skipped", report.Skipped()),
		logging.Int64("bytes", report.Bytes),
	)
	return report, nil
}

func copyAuxiliary(report *Report, dest, metadataName, sourceRoot string, opts fileutil.CopyOptions) error {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return fmt.Errorf("read source episode: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == metadataName {
			continue
		}
		n, err := fileutil.Copy(filepath.Join(sourceRoot, entry.Name()), filepath.Join(dest, entry.Name()), opts)
		if err != nil {
			return fmt.Errorf("copy auxiliary file %s: %w", entry.Name(), err)
		}
		report.AuxiliaryFiles = append(report.AuxiliaryFiles, entry.Name())
		report.Bytes += n
	}
	return nil
}

func copyAsset(logger *slog.Logger, dest, sourceRoot, rel string, opts fileutil.CopyOptions) (AssetResult, error) {
	clean, ok := assetref.SafeRel(rel)
	if !ok {
		logging.WarnWithContext(logger, "asset reference leaves the episode directory; skipping", "asset_unsafe",
			logging.String(logging.FieldPath, rel),
			logging.String(logging.FieldErrorHint, "fix the path in the source metadata"),
			logging.String(logging.FieldImpact, "the referenced file is not copied"),
		)
		return AssetResult{Path: rel, Outcome: OutcomeSkippedUnsafe}, nil
	}

	src := filepath.Join(sourceRoot, filepath.FromSlash(clean))
	dst := filepath.Join(dest, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return AssetResult{}, fmt.Errorf("create directory for %s: %w", rel, err)
	}

	n, err := fileutil.Copy(src, dst, opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "referenced file missing; skipping", "asset_missing",
				logging.String(logging.FieldPath, src),
				logging.String(logging.FieldErrorHint, "the capture may have dropped this frame"),
				logging.String(logging.FieldImpact, "metadata still references a file absent from the destination"),
			)
			return AssetResult{Path: rel, Outcome: OutcomeSkippedMissing}, nil
		}
		return AssetResult{}, fmt.Errorf("copy %s: %w", rel, err)
	}
	return AssetResult{Path: rel, Outcome: OutcomeCopied, Bytes: n}, nil
}
