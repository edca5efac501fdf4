package transform_test

import (
	"errors"
	"reflect"
	"testing"

	"episodekit/internal/episode"
	"episodekit/internal/transform"
)

func TestCutSlicesAndReindexes(t *testing.T) {
	ep := fixture(t, 300)

	out, err := transform.Cut(ep, 50, 150, transform.CutOptions{})
	if err != nil {
		t.Fatalf("Cut: %v", err)
	}
	if out.Len() != 100 {
		t.Fatalf("expected 100 frames, got %d", out.Len())
	}
	for i, frame := range out.Frames {
		if frame.Idx != i {
			t.Fatalf("frame %d: idx %d", i, frame.Idx)
		}
		if got, want := frame.Colors.Get("color_0"), ep.Frames[50+i].Colors.Get("color_0"); got != want {
			t.Fatalf("frame %d: color_0 %q, want %q", i, got, want)
		}
		if !reflect.DeepEqual(frame.States["left_arm"].QPos, ep.Frames[50+i].States["left_arm"].QPos) {
			t.Fatalf("frame %d: qpos differs from source frame %d", i, 50+i)
		}
	}
	if !reflect.DeepEqual(out.Info, ep.Info) {
		t.Fatal("info block changed by cut")
	}
	if !reflect.DeepEqual(out.Extra, ep.Extra) {
		t.Fatal("top-level fields changed by cut")
	}
}

func TestCutKeepIdxPreservesSourceValues(t *testing.T) {
	ep := fixture(t, 20)

	out, err := transform.Cut(ep, 5, 9, transform.CutOptions{KeepIdx: true})
	if err != nil {
		t.Fatalf("Cut: %v", err)
	}
	want := []int{5, 6, 7, 8}
	for i, frame := range out.Frames {
		if frame.Idx != want[i] {
			t.Fatalf("frame %d: idx %d, want %d", i, frame.Idx, want[i])
		}
	}
}

func TestCutClampsBounds(t *testing.T) {
	ep := fixture(t, 10)

	cases := []struct {
		name       string
		start, end int
		wantLen    int
		wantFirst  string
	}{
		{name: "negative start", start: -5, end: 3, wantLen: 3, wantFirst: ep.Frames[0].Colors.Get("color_0")},
		{name: "end past length", start: 7, end: 100, wantLen: 3, wantFirst: ep.Frames[7].Colors.Get("color_0")},
		{name: "start past last frame", start: 50, end: 60, wantLen: 1, wantFirst: ep.Frames[9].Colors.Get("color_0")},
		{name: "whole episode", start: 0, end: 10, wantLen: 10, wantFirst: ep.Frames[0].Colors.Get("color_0")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := transform.Cut(ep, tc.start, tc.end, transform.CutOptions{})
			if err != nil {
				t.Fatalf("Cut: %v", err)
			}
			if out.Len() != tc.wantLen {
				t.Fatalf("expected %d frames, got %d", tc.wantLen, out.Len())
			}
			if got := out.Frames[0].Colors.Get("color_0"); got != tc.wantFirst {
				t.Fatalf("first frame color_0 %q, want %q", got, tc.wantFirst)
			}
		})
	}
}

func TestCutRejectsEmptyRange(t *testing.T) {
	ep := fixture(t, 10)

	for _, tc := range []struct {
		name       string
		start, end int
	}{
		{"equal", 4, 4},
		{"reversed", 6, 2},
		{"end clamped to zero", 0, -3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transform.Cut(ep, tc.start, tc.end, transform.CutOptions{})
			if !errors.Is(err, episode.ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
			if episode.KindOf(err) != episode.KindValidation {
				t.Fatalf("expected validation kind, got %q", episode.KindOf(err))
			}
		})
	}
}

func TestCutRejectsEmptyEpisode(t *testing.T) {
	_, err := transform.Cut(&episode.Episode{}, 0, 1, transform.CutOptions{})
	if !errors.Is(err, episode.ErrEmptyEpisode) {
		t.Fatalf("expected ErrEmptyEpisode, got %v", err)
	}
}

func TestCutDoesNotMutateSource(t *testing.T) {
	ep := fixture(t, 12)
	before := ep.Clone()

	out, err := transform.Cut(ep, 2, 8, transform.CutOptions{})
	if err != nil {
		t.Fatalf("Cut: %v", err)
	}
	out.Frames[0].States["left_arm"].QPos[0] = -1
	out.Info.JointNames["extra"] = []byte(`[]`)

	assertSameDocument(t, before, ep)
}

func TestReindex(t *testing.T) {
	ep := fixture(t, 5)
	for i := range ep.Frames {
		ep.Frames[i].Idx = 100 + i*3
	}
	out := transform.Reindex(ep)
	for i, frame := range out.Frames {
		if frame.Idx != i {
			t.Fatalf("frame %d: idx %d", i, frame.Idx)
		}
	}
	if ep.Frames[1].Idx != 103 {
		t.Fatalf("source idx mutated: %d", ep.Frames[1].Idx)
	}
}

func TestBounds(t *testing.T) {
	for _, tc := range []struct {
		start, end, n int
		lo, hi        int
		ok            bool
	}{
		{0, 10, 10, 0, 10, true},
		{-3, 4, 10, 0, 4, true},
		{9, 20, 10, 9, 10, true},
		{12, 20, 10, 9, 10, true},
		{5, 5, 10, 5, 5, false},
		{0, 1, 0, 0, 0, false},
	} {
		lo, hi, ok := transform.Bounds(tc.start, tc.end, tc.n)
		if lo != tc.lo || hi != tc.hi || ok != tc.ok {
			t.Fatalf("Bounds(%d, %d, %d) = (%d, %d, %v), want (%d, %d, %v)",
				tc.start, tc.end, tc.n, lo, hi, ok, tc.lo, tc.hi, tc.ok)
		}
	}
}
