package curate

import (
	"fmt"

	"episodekit/internal/assetref"
	"episodekit/internal/episode"
	"episodekit/internal/logging"
	"episodekit/internal/materialize"
	"episodekit/internal/transform"
)

// CutRequest describes a single-episode cut inside one task root.
type CutRequest struct {
	TaskRoot   string
	Episode    int
	OutEpisode int
	// Start and End select the half-open frame range [Start, End); both are
	// clamped to the episode length.
	Start   int
	End     int
	KeepIdx bool
	// Filter is applied to the cut frames before references are resolved.
	Filter transform.Filter
	// Overwrite deletes a populated destination episode before writing.
	Overwrite bool
}

// CutResult describes a completed cut.
type CutResult struct {
	Source       string
	Destination  string
	SourceFrames int
	// Start and End are the clamped bounds actually used.
	Start  int
	End    int
	Report materialize.Report
}

// CutEpisode cuts req.Episode into req.OutEpisode. Only the assets referenced
// by the retained frames are copied.
func CutEpisode(req CutRequest, opts Options) (CutResult, error) {
	var result CutResult
	if req.Episode < 0 || req.OutEpisode < 0 {
		return result, episode.InvalidRange("episode indices must be non-negative (episode=%d, out=%d)", req.Episode, req.OutEpisode)
	}
	if req.Episode == req.OutEpisode {
		return result, episode.InvalidRange("output episode %d is the source episode", req.OutEpisode)
	}

	store := episode.NewStore(req.TaskRoot, opts.Layout)
	source := store.Resolve(req.Episode)
	dest := store.Resolve(req.OutEpisode)
	result.Source = source.Dir
	result.Destination = dest.Dir

	ep, err := episode.Load(source)
	if err != nil {
		return result, err
	}
	result.SourceFrames = ep.Len()

	cut, err := transform.Cut(ep, req.Start, req.End, transform.CutOptions{KeepIdx: req.KeepIdx})
	if err != nil {
		return result, err
	}
	result.Start, result.End, _ = transform.Bounds(req.Start, req.End, ep.Len())
	cut = req.Filter.Apply(cut)

	if err := prepareDestination(dest.Dir, req.Overwrite); err != nil {
		return result, err
	}

	logger := logging.NewComponentLogger(opts.Logger, "curate")
	logger.Info("cutting episode",
		logging.String(logging.FieldEpisode, source.Name()),
		logging.String(logging.FieldDestination, dest.Dir),
		logging.Int("start", result.Start),
		logging.Int("end", result.End),
		logging.Int("frames", cut.Len()),
	)

	report, err := materialize.Materialize(dest.Dir, cut, assetref.Collect(cut), opts.materializeOptions(source, dest.Name()))
	result.Report = report
	if err != nil {
		return result, fmt.Errorf("materialize %s: %w", dest.Name(), err)
	}
	return result, nil
}

// prepareDestination fails on a populated destination unless overwrite is
// set, in which case the destination is removed.
func prepareDestination(dest string, overwrite bool) error {
	err := materialize.CheckDestination(dest)
	if err == nil {
		return nil
	}
	if !overwrite || episode.KindOf(err) != episode.KindConflict {
		return err
	}
	return materialize.Clear(dest)
}
