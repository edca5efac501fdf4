package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"episodekit/internal/episode"
	"episodekit/internal/summary"
	"episodekit/internal/textutil"
)

type groupRangeJSON struct {
	Section    string    `json:"section"`
	Group      string    `json:"group"`
	Frames     int       `json:"frames"`
	Mismatched int       `json:"mismatched"`
	Dim        int       `json:"dim"`
	Min        []float64 `json:"min"`
	Max        []float64 `json:"max"`
	Range      []float64 `json:"range"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var sections, groups []string

	cmd := &cobra.Command{
		Use:   "stats <episode>",
		Short: "Report per joint group qpos min/max/range",
		Long: "Stats reads one episode (an index under the task root, an episode directory, or a\n" +
			"metadata file) and reports the element-wise qpos range of every joint group.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := resolveEpisodeArg(ctx, args[0])
			if err != nil {
				return err
			}
			ep, err := episode.Load(h)
			if err != nil {
				return err
			}
			ranges := summary.Summarize(ep, summary.Options{
				Sections: textutil.SortedKeys(textutil.ParseKeySet(sections...)),
				Groups:   textutil.SortedKeys(textutil.ParseKeySet(groups...)),
			})

			if ctx.jsonOutput() {
				payload := make([]groupRangeJSON, 0, len(ranges))
				for _, r := range ranges {
					payload = append(payload, groupRangeJSON{
						Section: r.Section, Group: r.Group, Frames: r.Frames, Mismatched: r.Mismatched,
						Dim: r.Dim(), Min: r.Min, Max: r.Max, Range: r.Range,
					})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode: %s (%d frames)\n", h.MetadataPath(), ep.Len())
			if len(ranges) == 0 {
				fmt.Fprintln(out, "No qpos samples found")
				return nil
			}
			rows := make([][]string, 0, len(ranges))
			for _, r := range ranges {
				rows = append(rows, []string{
					r.Section,
					r.Group,
					strconv.Itoa(r.Frames),
					strconv.Itoa(r.Dim()),
					formatVector(r.Min),
					formatVector(r.Max),
					formatVector(r.Range),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{left("Section"), left("Group"), right("Frames"), right("Dim"), left("Min"), left("Max"), left("Range")},
				rows,
			))
			for _, r := range ranges {
				if r.Mismatched > 0 {
					fmt.Fprintf(out, "warning: %s/%s skipped %d frames with a qpos length other than %d\n", r.Section, r.Group, r.Mismatched, r.Dim())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sections, "sections", nil, "Sections to summarize (states, actions)")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Joint groups to summarize (default: all)")
	return cmd
}
