package transform

import (
	"episodekit/internal/episode"
)

// CutOptions controls Cut.
type CutOptions struct {
	// KeepIdx preserves the source idx values instead of rewriting them to 0..n-1.
	KeepIdx bool
}

// Bounds clamps start to [0, n) and end to [0, n] and reports whether the
// resulting half-open range is non-empty.
func Bounds(start, end, n int) (int, int, bool) {
	if n <= 0 {
		return 0, 0, false
	}
	start = clamp(start, 0, n-1)
	end = clamp(end, 0, n)
	return start, end, end > start
}

// Cut returns the frames in [start, end) of ep as a new episode. The info
// block and top-level fields are copied unchanged; asset references are not
// inspected.
func Cut(ep *episode.Episode, start, end int, opts CutOptions) (*episode.Episode, error) {
	n := ep.Len()
	if n == 0 {
		return nil, episode.EmptyEpisode("cut source")
	}
	lo, hi, ok := Bounds(start, end, n)
	if !ok {
		return nil, episode.InvalidRange("start=%d, end=%d, len=%d", lo, hi, n)
	}

	out := ep.CloneEnvelope()
	out.Frames = make([]episode.Frame, 0, hi-lo)
	for i := lo; i < hi; i++ {
		frame := ep.Frames[i].Clone()
		if !opts.KeepIdx {
			frame.Idx = i - lo
		}
		out.Frames = append(out.Frames, frame)
	}
	return out, nil
}

// Reindex returns a copy of ep with idx rewritten to 0..n-1 in frame order.
func Reindex(ep *episode.Episode) *episode.Episode {
	out := ep.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Frames {
		out.Frames[i].Idx = i
	}
	return out
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
