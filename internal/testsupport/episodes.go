package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EpisodeOptions shapes the fixture produced by EpisodeDoc.
type EpisodeOptions struct {
	Frames      int
	Cameras     []string
	Depths      []string
	JointGroups []string
	// Dims is the qpos length per group; defaults to 7.
	Dims int
	// SharedAudio, when set, is referenced by every frame as a single path.
	SharedAudio string
}

// DefaultCameras and DefaultGroups mirror a dual-arm capture rig.
var (
	DefaultCameras = []string{"color_0", "color_1"}
	DefaultGroups  = []string{"left_arm", "right_arm", "left_ee", "right_ee"}
)

// ColorPath returns the relative color image path used by fixtures.
func ColorPath(frame int, camera string) string {
	return fmt.Sprintf("colors/%06d_%s.jpg", frame, camera)
}

// DepthPath returns the relative depth image path used by fixtures.
func DepthPath(frame int, stream string) string {
	return fmt.Sprintf("depths/%06d_%s.png", frame, stream)
}

// EpisodeDoc builds a metadata document as a generic JSON tree. Every frame
// references one image per camera and depth stream; qpos values encode the
// frame number so slices are easy to check.
func EpisodeDoc(opts EpisodeOptions) map[string]any {
	if opts.Dims <= 0 {
		opts.Dims = 7
	}
	jointNames := map[string]any{}
	for _, group := range opts.JointGroups {
		names := make([]string, opts.Dims)
		for i := range names {
			names[i] = fmt.Sprintf("%s_joint_%d", group, i)
		}
		jointNames[group] = names
	}
	tactileNames := map[string]any{}
	for _, group := range opts.JointGroups {
		if group == "left_ee" || group == "right_ee" {
			tactileNames[group] = []string{group + "_pad_0", group + "_pad_1"}
		}
	}

	frames := make([]any, 0, opts.Frames)
	for i := 0; i < opts.Frames; i++ {
		colors := map[string]any{}
		for _, camera := range opts.Cameras {
			colors[camera] = ColorPath(i, camera)
		}
		depths := map[string]any{}
		for _, stream := range opts.Depths {
			depths[stream] = DepthPath(i, stream)
		}
		states := map[string]any{}
		actions := map[string]any{}
		for _, group := range opts.JointGroups {
			qpos := make([]float64, opts.Dims)
			for d := range qpos {
				qpos[d] = float64(i) + float64(d)/10
			}
			states[group] = map[string]any{"qpos": qpos, "qvel": []float64{}, "torque": []float64{}}
			actions[group] = map[string]any{"qpos": qpos}
		}
		frame := map[string]any{
			"idx":      i,
			"colors":   colors,
			"depths":   depths,
			"states":   states,
			"actions":  actions,
			"tactiles": map[string]any{},
		}
		if opts.SharedAudio != "" {
			frame["audios"] = opts.SharedAudio
		} else {
			frame["audios"] = nil
		}
		frames = append(frames, frame)
	}

	return map[string]any{
		"info": map[string]any{
			"version":       "1.0.0",
			"date":          "2025-12-09",
			"author":        "unitree",
			"image":         map[string]any{"width": 640, "height": 480, "fps": 30},
			"joint_names":   jointNames,
			"tactile_names": tactileNames,
		},
		"text": map[string]any{"goal": "pick toy", "desc": "fixture"},
		"data": frames,
	}
}

// WriteEpisode writes doc as dir/data.json. When writeAssets is set every
// referenced color, depth, and audio path is created with content derived
// from its relative path.
func WriteEpisode(t testing.TB, dir string, doc map[string]any, writeAssets bool) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal episode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.json"), data, 0o644); err != nil {
		t.Fatalf("write data.json: %v", err)
	}
	if !writeAssets {
		return
	}
	for _, rel := range ReferencedPaths(doc) {
		WriteAsset(t, dir, rel)
	}
}

// WriteAsset creates dir/rel with content AssetContent(rel).
func WriteAsset(t testing.TB, dir, rel string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, AssetContent(rel), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AssetContent is the deterministic payload written for a fixture asset.
func AssetContent(rel string) []byte {
	return []byte("asset:" + rel)
}

// ReferencedPaths lists every non-empty asset path referenced by doc.
func ReferencedPaths(doc map[string]any) []string {
	frames, _ := doc["data"].([]any)
	seen := map[string]struct{}{}
	var out []string
	add := func(value any) {
		if rel, ok := value.(string); ok && rel != "" {
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				out = append(out, rel)
			}
		}
	}
	for _, raw := range frames {
		frame, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, section := range []string{"colors", "depths", "audios"} {
			switch value := frame[section].(type) {
			case map[string]any:
				for _, rel := range value {
					add(rel)
				}
			case string:
				add(value)
			}
		}
	}
	return out
}

// ReadJSON decodes path into a generic JSON tree.
func ReadJSON(t testing.TB, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return out
}
