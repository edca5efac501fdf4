package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"episodekit/internal/episode"
	"episodekit/internal/testsupport"
)

type cliTestEnv struct {
	taskRoot   string
	stateDir   string
	configPath string
}

func setupCLITestEnv(t *testing.T, indices ...int) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("EPISODEKIT_TASK_ROOT", "")

	env := &cliTestEnv{
		taskRoot:   filepath.Join(base, "pick_toy"),
		stateDir:   filepath.Join(base, "state"),
		configPath: filepath.Join(base, "episodekit.toml"),
	}
	if err := os.MkdirAll(env.taskRoot, 0o755); err != nil {
		t.Fatalf("mkdir task root: %v", err)
	}
	for _, index := range indices {
		doc := testsupport.EpisodeDoc(testsupport.EpisodeOptions{
			Frames:      6,
			Cameras:     testsupport.DefaultCameras,
			Depths:      []string{"depth_0"},
			JointGroups: testsupport.DefaultGroups,
		})
		testsupport.WriteEpisode(t, filepath.Join(env.taskRoot, episode.DefaultLayout().DirName(index)), doc, true)
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ntask_root = %q\nstate_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		env.taskRoot,
		env.stateDir,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("decode %q: %v", output, err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "invalid range", err: episode.InvalidRange("start=5, end=5"), want: exitValidation},
		{name: "wrapped empty episode", err: fmt.Errorf("cut: %w", episode.EmptyEpisode("x")), want: exitValidation},
		{name: "usage", err: usageErrorf("bad flag"), want: exitValidation},
		{name: "destination exists", err: episode.DestinationExists("/tmp/x"), want: exitFailure},
		{name: "missing metadata", err: episode.MissingMetadata("/tmp/x/data.json"), want: exitFailure},
		{name: "plain", err: errors.New("boom"), want: exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCLIList(t *testing.T) {
	env := setupCLITestEnv(t, 0, 3)

	out, _, err := runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "episode_0000")
	requireContains(t, out, "episode_0003")
	requireContains(t, out, "color_0, color_1")

	out, _, err = runCLI(t, env, "--json", "list")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var listings []episodeListing
	decodeJSON(t, out, &listings)
	if len(listings) != 2 || listings[1].Index != 3 || listings[1].Frames != 6 {
		t.Fatalf("unexpected listings: %+v", listings)
	}
	if listings[0].Bytes == 0 {
		t.Fatal("expected episode size")
	}
}

func TestCLIListRequiresTaskRoot(t *testing.T) {
	env := setupCLITestEnv(t)
	content := fmt.Sprintf("[paths]\nstate_dir = %q\n", env.stateDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, env, "list")
	if err == nil || exitCode(err) != exitValidation {
		t.Fatalf("expected usage error, got %v", err)
	}

	out, _, err := runCLI(t, env, "--task-root", t.TempDir(), "list")
	if err != nil {
		t.Fatalf("list with --task-root: %v", err)
	}
	requireContains(t, out, "No episodes under")
}

func TestCLICutAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, 0)

	out, _, err := runCLI(t, env, "cut", "--episode", "0", "--start", "2", "--end", "5", "--out-episode", "7")
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	requireContains(t, out, "Written cut episode")
	requireContains(t, out, "Frames: 3  (from [2:5) of 6)")

	dest := filepath.Join(env.taskRoot, "episode_0007")
	ep, err := episode.Load(episode.Handle{Dir: dest})
	if err != nil {
		t.Fatalf("load cut episode: %v", err)
	}
	if ep.Len() != 3 || ep.Frames[0].Idx != 0 {
		t.Fatalf("unexpected cut episode: len=%d idx0=%d", ep.Len(), ep.Frames[0].Idx)
	}

	_, _, err = runCLI(t, env, "cut", "--episode", "0", "--start", "4", "--end", "4", "--out-episode", "8")
	if !errors.Is(err, episode.ErrInvalidRange) || exitCode(err) != exitValidation {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.taskRoot, "episode_0008")); !os.IsNotExist(statErr) {
		t.Fatal("failed cut created its destination")
	}

	_, _, err = runCLI(t, env, "cut", "--episode", "0", "--start", "0", "--end", "2", "--out-episode", "7")
	if !errors.Is(err, episode.ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %v", err)
	}

	out, _, err = runCLI(t, env, "--json", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []runJSON
	decodeJSON(t, out, &runs)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	first := runs[len(runs)-1]
	if first.Operation != "cut" || first.Status != "succeeded" || first.Frames != 3 || first.AssetsCopied != 9 {
		t.Fatalf("unexpected first run: %+v", first)
	}
	if runs[0].Status != "failed" || !strings.Contains(runs[0].Error, "destination exists") {
		t.Fatalf("unexpected latest run: %+v", runs[0])
	}

	out, _, err = runCLI(t, env, "history", first.ID)
	if err != nil {
		t.Fatalf("history <id>: %v", err)
	}
	requireContains(t, out, first.ID)
	requireContains(t, out, "9 copied, 0 skipped")

	out, _, err = runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "failed")
}

func TestCLIFilter(t *testing.T) {
	env := setupCLITestEnv(t, 0, 1, 2)

	out, _, err := runCLI(t, env, "filter", "--suffix", "_left", "--init", "1",
		"--drop-cameras", "color_1", "--drop-joint-groups", "right_arm,right_ee", "--dry-run")
	if err != nil {
		t.Fatalf("filter --dry-run: %v", err)
	}
	requireContains(t, out, "Episodes:    1..last (inclusive): 2")
	requireContains(t, out, "Drop colors: color_1")
	requireContains(t, out, "Dry run: nothing written")
	dest := env.taskRoot + "_left"
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("dry run created the destination")
	}

	out, _, err = runCLI(t, env, "--json", "filter", "--suffix", "_left", "--init", "1",
		"--drop-cameras", "color_1", "--drop-joint-groups", "right_arm,right_ee")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	var result datasetResultJSON
	decodeJSON(t, out, &result)
	if result.Destination != dest || len(result.Episodes) != 2 || result.Frames != 12 {
		t.Fatalf("unexpected result: %+v", result)
	}
	// 6 frames x (color_0 + depth_0).
	if result.Episodes[0].Assets != 12 {
		t.Fatalf("assets = %d, want 12", result.Episodes[0].Assets)
	}
	for _, f := range testsupport.ListFiles(t, dest) {
		if strings.Contains(f, "color_1") {
			t.Fatalf("dropped camera copied: %s", f)
		}
	}

	_, _, err = runCLI(t, env, "filter", "--suffix", "_left")
	if !errors.Is(err, episode.ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %v", err)
	}
}

func TestCLICopyVerbatim(t *testing.T) {
	env := setupCLITestEnv(t, 0, 1)
	testsupport.WriteFile(t, filepath.Join(env.taskRoot, "episode_0001", "extra", "calib.yaml"), 12)

	parent := t.TempDir()
	out, _, err := runCLI(t, env, "copy", "--suffix", "_copy", "--dst-parent", parent, "--init", "1", "--end", "1")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	requireContains(t, out, "Mode:        verbatim copy")
	requireContains(t, out, "Done. 1 episodes")
	copied := filepath.Join(parent, "pick_toy_copy", "episode_0001", "extra", "calib.yaml")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("verbatim copy missed unreferenced file: %v", err)
	}
}

func TestCLIStatsAndShow(t *testing.T) {
	env := setupCLITestEnv(t, 4)

	out, _, err := runCLI(t, env, "stats", "4", "--sections", "states", "--groups", "left_arm")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "left_arm")
	requireContains(t, out, "[0.0000 0.1000")
	if strings.Contains(out, "right_arm") {
		t.Fatalf("stats ignored --groups: %s", out)
	}

	out, _, err = runCLI(t, env, "--json", "stats", filepath.Join(env.taskRoot, "episode_0004", "data.json"))
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	var ranges []groupRangeJSON
	decodeJSON(t, out, &ranges)
	if len(ranges) != 8 {
		t.Fatalf("expected 8 group ranges, got %d", len(ranges))
	}
	if ranges[0].Range[0] != 5 {
		t.Fatalf("range[0] = %v, want 5", ranges[0].Range[0])
	}

	out, _, err = runCLI(t, env, "--json", "show", "4", "--frame", "2")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var frame resolvedFrameJSON
	decodeJSON(t, out, &frame)
	want := filepath.Join(env.taskRoot, "episode_0004", filepath.FromSlash(testsupport.ColorPath(2, "color_1")))
	if frame.Idx != 2 || frame.Colors["color_1"] != want {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	_, _, err = runCLI(t, env, "show", "4", "--frame", "6")
	if exitCode(err) != exitValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCLIDoctor(t *testing.T) {
	env := setupCLITestEnv(t, 0)

	out, _, err := runCLI(t, env, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Task root:")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "Publish:")

	empty := setupCLITestEnv(t)
	if _, _, err := runCLI(t, empty, "doctor"); err == nil {
		t.Fatal("expected doctor to fail without episodes")
	}
}

func TestCLIDoctorCleanLocks(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	lockDir := filepath.Join(env.stateDir, "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(lockDir, "episode_0000-deadbeef.lock")
	if err := os.WriteFile(stale, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env, "--json", "doctor", "--clean-locks")
	if err != nil {
		t.Fatalf("doctor --clean-locks: %v\n%s", err, out)
	}
	var payload struct {
		Checks []checkJSON      `json:"checks"`
		Locks  *lockCleanupJSON `json:"locks"`
	}
	decodeJSON(t, out, &payload)
	if len(payload.Checks) != 4 {
		t.Fatalf("checks = %d, want 4", len(payload.Checks))
	}
	if payload.Locks == nil || len(payload.Locks.Removed) != 1 || payload.Locks.Removed[0] != stale {
		t.Fatalf("unexpected lock cleanup: %+v", payload.Locks)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale lock still present: %v", err)
	}
}

func TestCLIPublishDisabled(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	_, _, err := runCLI(t, env, "publish", "0")
	if !errors.Is(err, errPublishDisabled) {
		t.Fatalf("expected errPublishDisabled, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.taskRoot)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}
}
