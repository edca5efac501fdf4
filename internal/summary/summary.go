// Package summary reports per-joint-group qpos ranges over an episode.
package summary

import (
	"slices"

	"episodekit/internal/episode"
)

// Sections summarized by default.
const (
	SectionStates  = "states"
	SectionActions = "actions"
)

// Options selects what to summarize. Empty fields mean everything.
type Options struct {
	Sections []string
	Groups   []string
}

// GroupRange is the element-wise qpos range of one group in one section.
type GroupRange struct {
	Section string
	Group   string
	// Frames counts the samples that contributed.
	Frames int
	// Mismatched counts samples skipped because their length differed from the first.
	Mismatched int
	Min        []float64
	Max        []float64
	Range      []float64
}

// Dim returns the vector length.
func (g GroupRange) Dim() int { return len(g.Min) }

// Summarize computes a GroupRange for every requested (section, group) pair
// that has at least one non-empty qpos sample. Results are ordered by the
// requested sections, then by group.
func Summarize(ep *episode.Episode, opts Options) []GroupRange {
	sections := opts.Sections
	if len(sections) == 0 {
		sections = []string{SectionStates, SectionActions}
	}
	groups := opts.Groups
	if len(groups) == 0 {
		groups = ep.JointGroups()
	} else {
		groups = slices.Clone(groups)
	}

	var out []GroupRange
	for _, section := range sections {
		for _, group := range groups {
			if summary, ok := summarize(ep, section, group); ok {
				out = append(out, summary)
			}
		}
	}
	return out
}

func summarize(ep *episode.Episode, section, group string) (GroupRange, bool) {
	result := GroupRange{Section: section, Group: group}
	if ep == nil {
		return result, false
	}
	for i := range ep.Frames {
		records := sectionOf(&ep.Frames[i], section)
		record := records[group]
		if record == nil || len(record.QPos) == 0 {
			continue
		}
		if result.Min == nil {
			result.Min = slices.Clone(record.QPos)
			result.Max = slices.Clone(record.QPos)
			result.Frames = 1
			continue
		}
		if len(record.QPos) != len(result.Min) {
			result.Mismatched++
			continue
		}
		for d, value := range record.QPos {
			result.Min[d] = min(result.Min[d], value)
			result.Max[d] = max(result.Max[d], value)
		}
		result.Frames++
	}
	if result.Frames == 0 {
		return result, false
	}
	result.Range = make([]float64, len(result.Min))
	for d := range result.Min {
		result.Range[d] = result.Max[d] - result.Min[d]
	}
	return result, true
}

func sectionOf(frame *episode.Frame, section string) map[string]*episode.JointRecord {
	switch section {
	case SectionStates:
		return frame.States
	case SectionActions:
		return frame.Actions
	default:
		return nil
	}
}
