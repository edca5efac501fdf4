package curate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"episodekit/internal/assetref"
	"episodekit/internal/episode"
	"episodekit/internal/fileutil"
	"episodekit/internal/logging"
	"episodekit/internal/materialize"
	"episodekit/internal/transform"
)

// DatasetRequest describes a range copy of a dataset into a sibling directory.
type DatasetRequest struct {
	// Source is the dataset root holding episode directories.
	Source string
	// DestParent defaults to the parent directory of Source.
	DestParent string
	// Suffix is appended to the source directory name to form the destination name.
	Suffix string
	// First and Last bound the inclusive episode index range; Last may be
	// transform.OpenEnd.
	First  int
	Last   int
	Filter transform.Filter
	// Overwrite deletes a populated destination before the run.
	Overwrite bool
	// DryRun reports what would happen without writing anything.
	DryRun bool
	// Verbatim copies each episode directory recursively without parsing it.
	Verbatim bool
}

// Plan is a validated dataset run. Nothing has been written when Prepare returns.
type Plan struct {
	Source      string
	Destination string
	Episodes    []episode.Handle
	Filter      transform.Filter
	Overwrite   bool
	DryRun      bool
	Verbatim    bool
	// Populated reports that the destination already holds entries and will
	// be cleared first.
	Populated bool

	// filtered holds the parsed and filtered metadata of each episode, in
	// Episodes order, for non-verbatim plans.
	filtered []*episode.Episode
	opts     Options
}

// Prepare resolves and validates req. It fails when the source is not a
// directory, the destination overlaps the source, the range selects no
// episode, a selected episode lacks usable metadata, or the destination is
// populated without Overwrite. Outside verbatim mode every selected episode
// is parsed and filtered here, so Run never discovers a bad document after
// it has started writing.
func Prepare(req DatasetRequest, opts Options) (*Plan, error) {
	if req.Source == "" {
		return nil, episode.InvalidRange("source dataset directory required")
	}
	source, err := filepath.Abs(req.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return nil, episode.MissingEpisodeDirectory("source is not a directory: %s", source)
	}

	parent := req.DestParent
	if parent == "" {
		parent = filepath.Dir(source)
	}
	parent, err = filepath.Abs(parent)
	if err != nil {
		return nil, fmt.Errorf("resolve destination parent: %w", err)
	}
	dest := filepath.Join(parent, filepath.Base(source)+req.Suffix)
	if dest == source {
		return nil, episode.InvalidRange("destination %s is the source dataset; set a suffix or another parent", dest)
	}
	if within(source, dest) {
		return nil, episode.InvalidRange("destination %s lies inside the source dataset", dest)
	}
	if within(dest, source) {
		return nil, episode.InvalidRange("source dataset %s lies inside the destination %s", source, dest)
	}

	store := episode.NewStore(source, opts.Layout)
	handles, err := store.List()
	if err != nil {
		return nil, err
	}
	selected, err := transform.SelectRange(handles, req.First, req.Last)
	if err != nil {
		return nil, err
	}
	var filtered []*episode.Episode
	if !req.Verbatim {
		filtered = make([]*episode.Episode, 0, len(selected))
		for _, h := range selected {
			ep, err := episode.Load(h)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", h.Name(), err)
			}
			filtered = append(filtered, req.Filter.Apply(ep))
		}
	}

	plan := &Plan{
		Source:      source,
		Destination: dest,
		Episodes:    selected,
		Filter:      req.Filter,
		Overwrite:   req.Overwrite,
		DryRun:      req.DryRun,
		Verbatim:    req.Verbatim,
		filtered:    filtered,
		opts:        opts,
	}
	if err := materialize.CheckDestination(dest); err != nil {
		if episode.KindOf(err) != episode.KindConflict || !req.Overwrite {
			return nil, err
		}
		plan.Populated = true
	}
	return plan, nil
}

// EpisodeResult describes one episode of a dataset run.
type EpisodeResult struct {
	Name        string
	Source      string
	Destination string
	Frames      int
	// Assets counts the referenced files the episode needs; in verbatim mode
	// it counts every file of the directory.
	Assets int
	// Report is set for materialized episodes.
	Report *materialize.Report
	Bytes  int64
}

// RunResult summarizes a dataset run.
type RunResult struct {
	Source      string
	Destination string
	DryRun      bool
	Episodes    []EpisodeResult
}

// Frames returns the total number of frames written or planned.
func (r RunResult) Frames() int {
	total := 0
	for _, ep := range r.Episodes {
		total += ep.Frames
	}
	return total
}

// Bytes returns the total number of bytes copied or planned.
func (r RunResult) Bytes() int64 {
	var total int64
	for _, ep := range r.Episodes {
		total += ep.Bytes
	}
	return total
}

// AssetCounts returns copied and skipped asset totals across materialized episodes.
func (r RunResult) AssetCounts() (copied, skipped int) {
	for _, ep := range r.Episodes {
		if ep.Report != nil {
			copied += ep.Report.Copied()
			skipped += ep.Report.Skipped()
		}
	}
	return copied, skipped
}

// Run executes the plan. Episodes are processed in index order; the first
// fatal error stops the run and is returned with the results so far.
func (p *Plan) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{Source: p.Source, Destination: p.Destination, DryRun: p.DryRun}
	logger := logging.NewComponentLogger(p.opts.Logger, "curate").With(
		logging.String(logging.FieldDestination, p.Destination),
	)

	if !p.DryRun {
		if p.Populated {
			logger.Info("clearing destination", logging.String(logging.FieldPath, p.Destination))
			if err := materialize.Clear(p.Destination); err != nil {
				return result, err
			}
		}
		if err := os.MkdirAll(p.Destination, 0o755); err != nil {
			return result, fmt.Errorf("create destination: %w", err)
		}
	}

	for i, h := range p.Episodes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		var (
			er  EpisodeResult
			err error
		)
		switch {
		case p.Verbatim:
			er, err = p.copyVerbatim(h)
		default:
			er, err = p.materializeEpisode(h, p.filtered[i])
		}
		if err != nil {
			return result, fmt.Errorf("%s: %w", h.Name(), err)
		}
		result.Episodes = append(result.Episodes, er)
		logger.Debug("episode processed",
			logging.String(logging.FieldEpisode, er.Name),
			logging.Int("frames", er.Frames),
			logging.Int("assets", er.Assets),
			logging.Bool("dry_run", p.DryRun),
		)
	}

	logger.Info("dataset run complete",
		logging.Int("episodes", len(result.Episodes)),
		logging.Int("frames", result.Frames()),
		logging.Int64("bytes", result.Bytes()),
		logging.Bool("dry_run", p.DryRun),
	)
	return result, nil
}

func (p *Plan) materializeEpisode(h episode.Handle, filtered *episode.Episode) (EpisodeResult, error) {
	out := filepath.Join(p.Destination, h.Name())
	er := EpisodeResult{Name: h.Name(), Source: h.Dir, Destination: out}

	refs := assetref.Collect(filtered)
	er.Frames = filtered.Len()
	er.Assets = refs.Len()

	if p.DryRun {
		er.Bytes = plannedBytes(h.Dir, refs)
		return er, nil
	}
	report, err := materialize.Materialize(out, filtered, refs, p.opts.materializeOptions(h, h.Name()))
	if err != nil {
		return er, err
	}
	er.Report = &report
	er.Bytes = report.Bytes
	return er, nil
}

func (p *Plan) copyVerbatim(h episode.Handle) (EpisodeResult, error) {
	out := filepath.Join(p.Destination, h.Name())
	er := EpisodeResult{Name: h.Name(), Source: h.Dir, Destination: out}
	if ep, err := episode.Load(h); err == nil {
		er.Frames = ep.Len()
	}

	if p.DryRun {
		files, size, err := fileutil.DirStats(h.Dir)
		if err != nil {
			return er, fmt.Errorf("size episode: %w", err)
		}
		er.Assets = files
		er.Bytes = size
		return er, nil
	}
	if err := materialize.CheckDestination(out); err != nil {
		return er, err
	}
	files, n, err := fileutil.CopyTree(h.Dir, out, p.opts.copyOptions())
	if err != nil {
		return er, err
	}
	er.Assets = files
	er.Bytes = n
	return er, nil
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && filepath.IsLocal(rel)
}

// plannedBytes sums the sizes of the referenced files that exist at the source.
func plannedBytes(dir string, refs assetref.Set) int64 {
	var total int64
	for _, rel := range refs.Sorted() {
		clean, ok := assetref.SafeRel(rel)
		if !ok {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}
