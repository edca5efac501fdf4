package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"episodekit/internal/config"
	"episodekit/internal/episode"
	"episodekit/internal/textutil"
	"episodekit/internal/transform"
)

// resolveEpisodeArg accepts an episode index under the task root, an episode
// directory, or a metadata file path.
func resolveEpisodeArg(ctx *commandContext, arg string) (episode.Handle, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return episode.Handle{}, usageErrorf("episode index or path is required")
	}
	if index, err := strconv.Atoi(arg); err == nil {
		if index < 0 {
			return episode.Handle{}, usageErrorf("invalid episode index: %d", index)
		}
		store, err := ctx.episodeStore()
		if err != nil {
			return episode.Handle{}, err
		}
		h := store.Resolve(index)
		if _, err := os.Stat(h.Dir); err != nil {
			return episode.Handle{}, episode.MissingEpisodeDirectory("%s", h.Dir)
		}
		return h, nil
	}

	path, err := config.ExpandPath(arg)
	if err != nil {
		return episode.Handle{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return episode.Handle{}, fmt.Errorf("inspect path %q: %w", path, err)
	}
	if info.IsDir() {
		return episode.Handle{Dir: path, MetadataName: ctx.configValue().Layout.MetadataFile}, nil
	}
	return episode.Handle{Dir: filepath.Dir(path), MetadataName: filepath.Base(path)}, nil
}

func buildFilter(dropCameras, dropGroups []string) transform.Filter {
	return transform.Filter{
		DropCameras:     textutil.ParseKeySet(dropCameras...),
		DropJointGroups: textutil.ParseKeySet(dropGroups...),
	}
}

func formatVector(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// writeJSON encodes v as indented JSON on the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
