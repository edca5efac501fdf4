package transform_test

import (
	"reflect"
	"testing"

	"episodekit/internal/episode"
	"episodekit/internal/transform"
)

func TestFilterCamerasRemovesOnlyNamedStreams(t *testing.T) {
	ep := fixture(t, 6)

	out := transform.FilterCameras(ep, set("color_1", "not_a_camera"))
	for i, frame := range out.Frames {
		if keys := frame.Colors.Keys(); !reflect.DeepEqual(keys, []string{"color_0"}) {
			t.Fatalf("frame %d: colors %v", i, keys)
		}
		if !reflect.DeepEqual(frame.Depths.Paths(), ep.Frames[i].Depths.Paths()) {
			t.Fatalf("frame %d: depths changed", i)
		}
		if !reflect.DeepEqual(frame.States, ep.Frames[i].States) {
			t.Fatalf("frame %d: states changed", i)
		}
	}
	if len(ep.Frames[0].Colors.Keys()) != 2 {
		t.Fatal("source colors mutated")
	}
}

func TestFilterCamerasLeavesNonMappingForms(t *testing.T) {
	ep := fixture(t, 2)
	ep.Frames[0].Colors = episode.PathRef("colors/shared.jpg")
	ep.Frames[1].Colors = episode.NullRefs()

	out := transform.FilterCameras(ep, set("color_0"))
	if got := out.Frames[0].Colors.Paths(); !reflect.DeepEqual(got, []string{"colors/shared.jpg"}) {
		t.Fatalf("single-path colors changed: %v", got)
	}
	if out.Frames[1].Colors.IsAbsent() || len(out.Frames[1].Colors.Paths()) != 0 {
		t.Fatal("null colors changed")
	}
}

func TestFilterJointGroupsPrunesFramesAndInfo(t *testing.T) {
	ep := fixture(t, 8)

	out := transform.FilterJointGroups(ep, set("right_arm", "right_ee"))
	for i, frame := range out.Frames {
		for _, section := range []map[string]*episode.JointRecord{frame.States, frame.Actions} {
			if _, ok := section["right_arm"]; ok {
				t.Fatalf("frame %d still has right_arm", i)
			}
			if _, ok := section["right_ee"]; ok {
				t.Fatalf("frame %d still has right_ee", i)
			}
			if _, ok := section["left_arm"]; !ok {
				t.Fatalf("frame %d lost left_arm", i)
			}
		}
	}
	if _, ok := out.Info.JointNames["right_arm"]; ok {
		t.Fatal("info.joint_names still lists right_arm")
	}
	if _, ok := out.Info.TactileNames["right_ee"]; ok {
		t.Fatal("info.tactile_names still lists right_ee")
	}
	if _, ok := out.Info.JointNames["left_ee"]; !ok {
		t.Fatal("info.joint_names lost left_ee")
	}
	if got := out.JointGroups(); !reflect.DeepEqual(got, []string{"left_arm", "left_ee"}) {
		t.Fatalf("remaining groups %v", got)
	}
	if !reflect.DeepEqual(out.Info.Extra, ep.Info.Extra) {
		t.Fatal("other info fields changed")
	}
	if _, ok := ep.Info.JointNames["right_arm"]; !ok {
		t.Fatal("source info mutated")
	}
}

func TestFiltersAreIdempotent(t *testing.T) {
	ep := fixture(t, 5)
	filter := transform.Filter{
		DropCameras:     set("color_1"),
		DropJointGroups: set("right_arm", "missing_group"),
	}

	once := filter.Apply(ep)
	twice := filter.Apply(once)
	assertSameDocument(t, once, twice)
}

func TestFiltersCommuteWithCut(t *testing.T) {
	ep := fixture(t, 30)
	filter := transform.Filter{
		DropCameras:     set("color_0"),
		DropJointGroups: set("left_ee"),
	}

	cutFirst, err := transform.Cut(ep, 10, 20, transform.CutOptions{})
	if err != nil {
		t.Fatalf("Cut: %v", err)
	}
	cutFirst = filter.Apply(cutFirst)

	cutLast, err := transform.Cut(filter.Apply(ep), 10, 20, transform.CutOptions{})
	if err != nil {
		t.Fatalf("Cut: %v", err)
	}
	assertSameDocument(t, cutFirst, cutLast)

	camerasFirst := transform.FilterJointGroups(transform.FilterCameras(ep, filter.DropCameras), filter.DropJointGroups)
	groupsFirst := transform.FilterCameras(transform.FilterJointGroups(ep, filter.DropJointGroups), filter.DropCameras)
	assertSameDocument(t, camerasFirst, groupsFirst)
}

func TestFilterIsEmpty(t *testing.T) {
	if !(transform.Filter{}).IsEmpty() {
		t.Fatal("zero filter should be empty")
	}
	if (transform.Filter{DropCameras: set("color_0")}).IsEmpty() {
		t.Fatal("camera filter reported empty")
	}
	ep := fixture(t, 3)
	assertSameDocument(t, ep, transform.Filter{}.Apply(ep))
}
