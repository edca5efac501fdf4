package transform

import (
	"episodekit/internal/episode"
)

// FilterCameras removes the color streams named in drop from every frame.
// Depths, audios, and joint data are untouched.
func FilterCameras(ep *episode.Episode, drop map[string]struct{}) *episode.Episode {
	out := ep.Clone()
	if out == nil || len(drop) == 0 {
		return out
	}
	for i := range out.Frames {
		frame := &out.Frames[i]
		if frame.Colors.IsKeyed() {
			frame.Colors = frame.Colors.Without(drop)
		}
	}
	return out
}

// FilterJointGroups removes the groups named in drop from every frame's
// states and actions and from the info joint and tactile name tables.
// Groups that are absent are ignored, so the operation is idempotent.
func FilterJointGroups(ep *episode.Episode, drop map[string]struct{}) *episode.Episode {
	out := ep.Clone()
	if out == nil || len(drop) == 0 {
		return out
	}
	for i := range out.Frames {
		frame := &out.Frames[i]
		for group := range drop {
			delete(frame.States, group)
			delete(frame.Actions, group)
		}
	}
	if out.Info != nil {
		for group := range drop {
			delete(out.Info.JointNames, group)
			delete(out.Info.TactileNames, group)
		}
	}
	return out
}

// Filter describes a combined camera and joint-group filter.
type Filter struct {
	DropCameras     map[string]struct{}
	DropJointGroups map[string]struct{}
}

// IsEmpty reports whether the filter removes nothing.
func (f Filter) IsEmpty() bool {
	return len(f.DropCameras) == 0 && len(f.DropJointGroups) == 0
}

// Apply runs both filters over ep.
func (f Filter) Apply(ep *episode.Episode) *episode.Episode {
	return FilterJointGroups(FilterCameras(ep, f.DropCameras), f.DropJointGroups)
}
