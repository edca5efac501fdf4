package episode

import (
	"encoding/json"
	"path/filepath"
	"slices"
)

// ResolvedFrame is a frame with asset references joined to the episode root,
// as consumed by playback and inspection front-ends.
type ResolvedFrame struct {
	Idx      int
	Colors   map[string]string
	Depths   map[string]string
	Audios   []string
	States   map[string][]float64
	Actions  map[string][]float64
	Tactiles map[string]json.RawMessage
}

// ResolveFrames joins every non-empty color and depth path to dir. Empty
// references are dropped; states and actions are reduced to qpos vectors.
func ResolveFrames(ep *Episode, dir string) []ResolvedFrame {
	if ep == nil {
		return nil
	}
	out := make([]ResolvedFrame, 0, len(ep.Frames))
	for i := range ep.Frames {
		out = append(out, resolveFrame(&ep.Frames[i], dir))
	}
	return out
}

func resolveFrame(f *Frame, dir string) ResolvedFrame {
	rf := ResolvedFrame{
		Idx:      f.Idx,
		Colors:   resolveKeyed(f.Colors, dir),
		Depths:   resolveKeyed(f.Depths, dir),
		States:   qposVectors(f.States),
		Actions:  qposVectors(f.Actions),
		Tactiles: cloneRawMap(f.Tactiles),
	}
	for _, rel := range f.Audios.Paths() {
		rf.Audios = append(rf.Audios, filepath.Join(dir, filepath.FromSlash(rel)))
	}
	return rf
}

func resolveKeyed(refs AssetRefs, dir string) map[string]string {
	out := make(map[string]string)
	for _, key := range refs.Keys() {
		if rel := refs.Get(key); rel != "" {
			out[key] = filepath.Join(dir, filepath.FromSlash(rel))
		}
	}
	return out
}

func qposVectors(groups map[string]*JointRecord) map[string][]float64 {
	out := make(map[string][]float64, len(groups))
	for key, record := range groups {
		if record == nil {
			continue
		}
		out[key] = slices.Clone(record.QPos)
	}
	return out
}
