package transform_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"episodekit/internal/episode"
	"episodekit/internal/testsupport"
)

func fixture(t *testing.T, frames int) *episode.Episode {
	t.Helper()
	doc := testsupport.EpisodeDoc(testsupport.EpisodeOptions{
		Frames:      frames,
		Cameras:     testsupport.DefaultCameras,
		Depths:      []string{"depth_0"},
		JointGroups: testsupport.DefaultGroups,
	})
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	ep, err := episode.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return ep
}

// tree encodes ep and decodes it into a generic JSON value for comparison.
func tree(t *testing.T, ep *episode.Episode) any {
	t.Helper()
	data, err := episode.Encode(ep)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func assertSameDocument(t *testing.T, want, got *episode.Episode) {
	t.Helper()
	if w, g := tree(t, want), tree(t, got); !reflect.DeepEqual(w, g) {
		t.Fatalf("documents differ\nwant %v\ngot  %v", w, g)
	}
}

func set(keys ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out
}
