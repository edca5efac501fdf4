package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"episodekit/internal/episode"
)

type resolvedFrameJSON struct {
	Episode string               `json:"episode"`
	Frames  int                  `json:"frames"`
	Frame   int                  `json:"frame"`
	Idx     int                  `json:"idx"`
	Colors  map[string]string    `json:"colors"`
	Depths  map[string]string    `json:"depths"`
	Audios  []string             `json:"audios"`
	States  map[string][]float64 `json:"states"`
	Actions map[string][]float64 `json:"actions"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var frameIndex int

	cmd := &cobra.Command{
		Use:   "show <episode>",
		Short: "Show one frame with resolved asset paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := resolveEpisodeArg(ctx, args[0])
			if err != nil {
				return err
			}
			ep, err := episode.Load(h)
			if err != nil {
				return err
			}
			if frameIndex < 0 || frameIndex >= ep.Len() {
				return episode.InvalidRange("frame %d outside [0, %d)", frameIndex, ep.Len())
			}
			frame := episode.ResolveFrames(ep, h.Dir)[frameIndex]

			if ctx.jsonOutput() {
				return writeJSON(cmd, resolvedFrameJSON{
					Episode: h.Dir,
					Frames:  ep.Len(),
					Frame:   frameIndex,
					Idx:     frame.Idx,
					Colors:  frame.Colors,
					Depths:  frame.Depths,
					Audios:  frame.Audios,
					States:  frame.States,
					Actions: frame.Actions,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode:       %s\n", h.Dir)
			fmt.Fprintf(out, "Frames:        %d\n", ep.Len())
			fmt.Fprintf(out, "Color streams: %s\n", joinOrDash(ep.ColorKeys()))
			fmt.Fprintf(out, "Frame:         %d (idx %d)\n", frameIndex, frame.Idx)
			printPaths(out, "colors", frame.Colors)
			printPaths(out, "depths", frame.Depths)
			if len(frame.Audios) > 0 {
				fmt.Fprintln(out, "audios:")
				for _, path := range frame.Audios {
					fmt.Fprintf(out, "  %s%s\n", path, missingMarker(path))
				}
			}
			printVectors(out, "states", frame.States)
			printVectors(out, "actions", frame.Actions)
			return nil
		},
	}
	cmd.Flags().IntVarP(&frameIndex, "frame", "f", 0, "Frame position in the data list")
	return cmd
}

func printPaths(out io.Writer, title string, paths map[string]string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, key := range slices.Sorted(maps.Keys(paths)) {
		fmt.Fprintf(out, "  %-10s %s%s\n", key, paths[key], missingMarker(paths[key]))
	}
}

func printVectors(out io.Writer, title string, vectors map[string][]float64) {
	if len(vectors) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, key := range slices.Sorted(maps.Keys(vectors)) {
		fmt.Fprintf(out, "  %-10s %s\n", key, formatVector(vectors[key]))
	}
}

func missingMarker(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "  (missing)"
	}
	return ""
}
