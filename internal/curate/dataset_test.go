package curate_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"episodekit/internal/curate"
	"episodekit/internal/episode"
	"episodekit/internal/testsupport"
	"episodekit/internal/textutil"
	"episodekit/internal/transform"
)

func newDataset(t *testing.T, frames int, indices ...int) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "pick_toy")
	writeTask(t, src, frames, indices...)
	return src
}

func TestPrepareResolvesDestinationAndRange(t *testing.T) {
	src := newDataset(t, 2, 0, 1, 2, 3)

	plan, err := curate.Prepare(curate.DatasetRequest{
		Source: src, Suffix: "_trimmed", First: 1, Last: transform.OpenEnd,
	}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if want := filepath.Join(filepath.Dir(src), "pick_toy_trimmed"); plan.Destination != want {
		t.Fatalf("destination = %s, want %s", plan.Destination, want)
	}
	var names []string
	for _, h := range plan.Episodes {
		names = append(names, h.Name())
	}
	if !slices.Equal(names, []string{"episode_0001", "episode_0002", "episode_0003"}) {
		t.Fatalf("episodes = %v", names)
	}
	if plan.Populated {
		t.Fatal("fresh destination reported populated")
	}

	parent := t.TempDir()
	plan, err = curate.Prepare(curate.DatasetRequest{Source: src, DestParent: parent, Suffix: "_v2", First: 0, Last: 1}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare with parent: %v", err)
	}
	if plan.Destination != filepath.Join(parent, "pick_toy_v2") || len(plan.Episodes) != 2 {
		t.Fatalf("unexpected plan: %s %d", plan.Destination, len(plan.Episodes))
	}
	assertMissing(t, plan.Destination)
}

func TestPrepareRejects(t *testing.T) {
	src := newDataset(t, 2, 0, 1)
	if err := os.Remove(filepath.Join(src, "episode_0001", "data.json")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		req    curate.DatasetRequest
		target error
	}{
		{name: "no suffix", req: curate.DatasetRequest{Source: src, Last: transform.OpenEnd}, target: episode.ErrInvalidRange},
		{name: "destination inside source", req: curate.DatasetRequest{Source: src, DestParent: src, Suffix: "_x", Last: transform.OpenEnd}, target: episode.ErrInvalidRange},
		{name: "reversed range", req: curate.DatasetRequest{Source: src, Suffix: "_x", First: 3, Last: 1}, target: episode.ErrInvalidRange},
		{name: "range outside episodes", req: curate.DatasetRequest{Source: src, Suffix: "_x", First: 5, Last: 9}, target: episode.ErrMissingEpisodeDirectory},
		{name: "missing source", req: curate.DatasetRequest{Source: filepath.Join(src, "nope"), Suffix: "_x", Last: transform.OpenEnd}, target: episode.ErrMissingEpisodeDirectory},
		{name: "missing metadata", req: curate.DatasetRequest{Source: src, Suffix: "_x", Last: transform.OpenEnd}, target: episode.ErrMissingMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := curate.Prepare(tt.req, defaultOptions(t))
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			assertMissing(t, src+"_x")
		})
	}
}

func TestPrepareValidatesMetadataBeforeTouchingDestination(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{name: "empty episode", doc: `{"info":{},"data":[]}`, target: episode.ErrEmptyEpisode},
		{name: "malformed document", doc: `{"info":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newDataset(t, 2, 0, 1, 2)
			if err := os.WriteFile(filepath.Join(src, "episode_0002", "data.json"), []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			dest := src + "_out"
			keep := filepath.Join(dest, "keep.txt")
			testsupport.WriteFile(t, keep, 8)

			_, err := curate.Prepare(curate.DatasetRequest{
				Source: src, Suffix: "_out", Last: transform.OpenEnd, Overwrite: true,
			}, defaultOptions(t))
			if err == nil {
				t.Fatal("expected Prepare to reject the dataset")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if !strings.Contains(err.Error(), "episode_0002") {
				t.Fatalf("error does not name the episode: %v", err)
			}
			if _, err := os.Stat(keep); err != nil {
				t.Fatalf("destination modified: %v", err)
			}
			assertMissing(t, filepath.Join(dest, "episode_0000"))
		})
	}
}

func TestPrepareRejectsDestinationHoldingSource(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "ds_x", "ds")
	writeTask(t, src, 2, 0)

	_, err := curate.Prepare(curate.DatasetRequest{
		Source: src, DestParent: base, Suffix: "_x", Last: transform.OpenEnd, Overwrite: true,
	}, defaultOptions(t))
	if !errors.Is(err, episode.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "episode_0000", "data.json")); err != nil {
		t.Fatalf("source dataset modified: %v", err)
	}
}

func TestPrepareVerbatimToleratesMissingMetadata(t *testing.T) {
	src := newDataset(t, 2, 0)
	if err := os.Remove(filepath.Join(src, "episode_0000", "data.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := curate.Prepare(curate.DatasetRequest{Source: src, Suffix: "_raw", Last: transform.OpenEnd, Verbatim: true}, defaultOptions(t)); err != nil {
		t.Fatalf("Prepare verbatim: %v", err)
	}
}

func TestRunFiltersDataset(t *testing.T) {
	src := newDataset(t, 3, 0, 1, 2)
	testsupport.WriteFile(t, filepath.Join(src, "episode_0001", "notes.txt"), 16)

	plan, err := curate.Prepare(curate.DatasetRequest{
		Source: src, Suffix: "_left", First: 1, Last: 2,
		Filter: transform.Filter{
			DropCameras:     textutil.ParseKeySet("color_1"),
			DropJointGroups: textutil.ParseKeySet("right_arm,right_ee"),
		},
	}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	result, err := plan.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Episodes) != 2 || result.Frames() != 6 {
		t.Fatalf("episodes=%d frames=%d", len(result.Episodes), result.Frames())
	}
	copied, skipped := result.AssetCounts()
	// 2 episodes x 3 frames x (color_0 + depth_0).
	if copied != 12 || skipped != 0 {
		t.Fatalf("copied=%d skipped=%d", copied, skipped)
	}

	assertMissing(t, filepath.Join(plan.Destination, "episode_0000"))
	out := filepath.Join(plan.Destination, "episode_0001")
	if _, err := os.Stat(filepath.Join(out, "notes.txt")); err != nil {
		t.Fatalf("auxiliary file not copied: %v", err)
	}
	for _, f := range testsupport.ListFiles(t, out) {
		if strings.Contains(f, "color_1") {
			t.Fatalf("dropped camera copied: %s", f)
		}
	}
	for _, rel := range []string{testsupport.ColorPath(2, "color_0"), testsupport.DepthPath(0, "depth_0")} {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		if err != nil || !bytes.Equal(got, testsupport.AssetContent(rel)) {
			t.Fatalf("asset %s not copied intact (err=%v)", rel, err)
		}
	}

	ep := loadEpisode(t, out)
	if groups := ep.JointGroups(); !slices.Equal(groups, []string{"left_arm", "left_ee"}) {
		t.Fatalf("joint groups = %v", groups)
	}
	for _, frame := range ep.Frames {
		if _, ok := frame.Actions["right_arm"]; ok {
			t.Fatal("right_arm action survived")
		}
	}
	if _, ok := ep.Info.JointNames["right_ee"]; ok {
		t.Fatal("right_ee joint names survived")
	}
	if _, ok := ep.Info.TactileNames["right_ee"]; ok {
		t.Fatal("right_ee tactile names survived")
	}

	source := loadEpisode(t, filepath.Join(src, "episode_0001"))
	if !slices.Equal(source.ColorKeys(), []string{"color_0", "color_1"}) {
		t.Fatal("source metadata modified")
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	src := newDataset(t, 2, 0, 1)

	plan, err := curate.Prepare(curate.DatasetRequest{
		Source: src, Suffix: "_dry", Last: transform.OpenEnd, DryRun: true,
		Filter: transform.Filter{DropCameras: textutil.ParseKeySet("color_0")},
	}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	result, err := plan.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertMissing(t, plan.Destination)
	if !result.DryRun || len(result.Episodes) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for _, er := range result.Episodes {
		if er.Report != nil {
			t.Fatal("dry run produced a materialization report")
		}
		// 2 frames x (color_1 + depth_0).
		if er.Assets != 4 {
			t.Fatalf("%s planned assets = %d, want 4", er.Name, er.Assets)
		}
	}
	want := int64(0)
	for _, rel := range []string{
		testsupport.ColorPath(0, "color_1"), testsupport.ColorPath(1, "color_1"),
		testsupport.DepthPath(0, "depth_0"), testsupport.DepthPath(1, "depth_0"),
	} {
		want += int64(len(testsupport.AssetContent(rel)))
	}
	if result.Episodes[0].Bytes != want {
		t.Fatalf("planned bytes = %d, want %d", result.Episodes[0].Bytes, want)
	}
}

func TestRunOverwriteClearsDestination(t *testing.T) {
	src := newDataset(t, 2, 0)
	dest := src + "_copy"
	stale := filepath.Join(dest, "stale", "file.bin")
	testsupport.WriteFile(t, stale, 4)
	req := curate.DatasetRequest{Source: src, Suffix: "_copy", Last: transform.OpenEnd}

	if _, err := curate.Prepare(req, defaultOptions(t)); !errors.Is(err, episode.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("populated destination touched: %v", err)
	}

	req.Overwrite = true
	plan, err := curate.Prepare(req, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !plan.Populated {
		t.Fatal("expected populated destination")
	}
	if _, err := plan.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertMissing(t, stale)
	if got := loadEpisode(t, filepath.Join(dest, "episode_0000")).Len(); got != 2 {
		t.Fatalf("frames = %d", got)
	}
}

func TestRunVerbatimCopiesTree(t *testing.T) {
	src := newDataset(t, 2, 3, 4)
	extra := filepath.Join(src, "episode_0003", "colors", "unreferenced.jpg")
	testsupport.WriteFile(t, extra, 32)

	plan, err := curate.Prepare(curate.DatasetRequest{Source: src, Suffix: "_raw", First: 3, Last: 3, Verbatim: true}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	result, err := plan.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	srcFiles := testsupport.ListFiles(t, filepath.Join(src, "episode_0003"))
	dstFiles := testsupport.ListFiles(t, filepath.Join(plan.Destination, "episode_0003"))
	if !slices.Equal(srcFiles, dstFiles) {
		t.Fatalf("verbatim copy differs:\nsrc %v\ndst %v", srcFiles, dstFiles)
	}
	if result.Episodes[0].Assets != len(srcFiles) || result.Episodes[0].Frames != 2 {
		t.Fatalf("unexpected episode result: %+v", result.Episodes[0])
	}
	assertMissing(t, filepath.Join(plan.Destination, "episode_0004"))
}

func TestRunStopsOnCancel(t *testing.T) {
	src := newDataset(t, 1, 0, 1)
	plan, err := curate.Prepare(curate.DatasetRequest{Source: src, Suffix: "_c", Last: transform.OpenEnd}, defaultOptions(t))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := plan.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Episodes) != 0 {
		t.Fatalf("episodes processed after cancel: %d", len(result.Episodes))
	}
}
