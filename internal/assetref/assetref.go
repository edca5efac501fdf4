// Package assetref computes the closure of asset files an episode refers to.
package assetref

import (
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"episodekit/internal/episode"
)

// Set is a deduplicated set of relative asset paths in slash form.
type Set map[string]struct{}

// Collect walks every frame's colors, depths, and audios sections and returns
// every non-empty path they reference. Run it after filtering so dropped
// streams fall out of the closure.
func Collect(ep *episode.Episode) Set {
	out := make(Set)
	if ep == nil {
		return out
	}
	for i := range ep.Frames {
		frame := &ep.Frames[i]
		for _, refs := range []episode.AssetRefs{frame.Colors, frame.Depths, frame.Audios} {
			for _, rel := range refs.Paths() {
				out[rel] = struct{}{}
			}
		}
	}
	return out
}

// Len returns the number of paths in the set.
func (s Set) Len() int { return len(s) }

// Contains reports whether rel is in the set.
func (s Set) Contains(rel string) bool {
	_, ok := s[rel]
	return ok
}

// Sorted returns the paths in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// SafeRel cleans rel and reports whether it stays inside the episode root.
// Absolute paths and paths that climb out through ".." are rejected.
func SafeRel(rel string) (string, bool) {
	if rel == "" || filepath.IsAbs(rel) || path.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", false
	}
	cleaned := path.Clean(filepath.ToSlash(rel))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
