package curate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"episodekit/internal/curate"
	"episodekit/internal/episode"
	"episodekit/internal/testsupport"
)

func writeTask(t *testing.T, root string, frames int, indices ...int) {
	t.Helper()
	layout := episode.DefaultLayout()
	for _, index := range indices {
		doc := testsupport.EpisodeDoc(testsupport.EpisodeOptions{
			Frames:      frames,
			Cameras:     testsupport.DefaultCameras,
			Depths:      []string{"depth_0"},
			JointGroups: testsupport.DefaultGroups,
		})
		testsupport.WriteEpisode(t, filepath.Join(root, layout.DirName(index)), doc, true)
	}
}

func defaultOptions(t *testing.T) curate.Options {
	return curate.Options{
		Layout:             episode.DefaultLayout(),
		CopyAuxiliaryFiles: true,
		KeepStreamDirs:     true,
		PreserveTimes:      true,
		LockDir:            filepath.Join(t.TempDir(), "locks"),
	}
}

func loadEpisode(t *testing.T, dir string) *episode.Episode {
	t.Helper()
	ep, err := episode.Load(episode.Handle{Dir: dir})
	if err != nil {
		t.Fatalf("Load %s: %v", dir, err)
	}
	return ep
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("%s should not exist (err=%v)", path, err)
	}
}

func filesWithPrefix(files []string, prefix string) []string {
	var out []string
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}
