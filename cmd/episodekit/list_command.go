package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"episodekit/internal/episode"
	"episodekit/internal/fileutil"
	"episodekit/internal/textutil"
)

type episodeListing struct {
	Name        string   `json:"name"`
	Index       int      `json:"index"`
	Frames      int      `json:"frames"`
	Cameras     []string `json:"cameras"`
	JointGroups []string `json:"joint_groups"`
	Bytes       int64    `json:"bytes"`
	Error       string   `json:"error,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List episodes under the task root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.episodeStore()
			if err != nil {
				return err
			}
			handles, err := store.List()
			if err != nil {
				return err
			}

			listings := make([]episodeListing, 0, len(handles))
			for _, h := range handles {
				listings = append(listings, describeEpisode(h))
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, listings)
			}
			out := cmd.OutOrStdout()
			if len(listings) == 0 {
				fmt.Fprintf(out, "No episodes under %s\n", store.Root())
				return nil
			}
			rows := make([][]string, 0, len(listings))
			for _, l := range listings {
				frames := strconv.Itoa(l.Frames)
				if l.Error != "" {
					frames = "error: " + l.Error
				}
				rows = append(rows, []string{
					l.Name,
					frames,
					joinOrDash(l.Cameras),
					joinOrDash(l.JointGroups),
					textutil.FormatBytes(l.Bytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{left("Episode"), right("Frames"), left("Cameras"), left("Joint groups"), right("Size")},
				rows,
			))
			return nil
		},
	}
}

func describeEpisode(h episode.Handle) episodeListing {
	listing := episodeListing{Name: h.Name(), Index: h.Index}
	if size, err := fileutil.DirSize(h.Dir); err == nil {
		listing.Bytes = size
	}
	ep, err := episode.Load(h)
	if err != nil {
		listing.Error = err.Error()
		return listing
	}
	listing.Frames = ep.Len()
	listing.Cameras = ep.ColorKeys()
	listing.JointGroups = ep.JointGroups()
	return listing
}
