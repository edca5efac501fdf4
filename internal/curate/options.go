package curate

import (
	"log/slog"

	"episodekit/internal/episode"
	"episodekit/internal/fileutil"
	"episodekit/internal/materialize"
)

// Options carries the settings shared by every workflow.
type Options struct {
	Layout             episode.Layout
	CopyAuxiliaryFiles bool
	KeepStreamDirs     bool
	VerifyCopies       bool
	PreserveTimes      bool
	// LockDir holds per-destination lock files; empty disables locking.
	LockDir string
	Logger  *slog.Logger
	// Progress, when set, is called after each asset of episode name is handled.
	Progress func(name string, done, total int)
}

func (o Options) materializeOptions(source episode.Handle, name string) materialize.Options {
	opts := materialize.Options{
		SourceRoot:         source.Dir,
		MetadataName:       source.MetadataName,
		CopyAuxiliaryFiles: o.CopyAuxiliaryFiles,
		KeepStreamDirs:     o.KeepStreamDirs,
		VerifyCopies:       o.VerifyCopies,
		PreserveTimes:      o.PreserveTimes,
		LockDir:            o.LockDir,
		Logger:             o.Logger,
	}
	if o.Progress != nil {
		opts.Progress = func(done, total int) { o.Progress(name, done, total) }
	}
	return opts
}

func (o Options) copyOptions() fileutil.CopyOptions {
	return fileutil.CopyOptions{Verify: o.VerifyCopies, PreserveTimes: o.PreserveTimes}
}
