package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"episodekit/internal/curate"
	"episodekit/internal/episode"
	"episodekit/internal/journal"
	"episodekit/internal/textutil"
)

type cutResultJSON struct {
	Source        string   `json:"source"`
	Destination   string   `json:"destination"`
	Start         int      `json:"start"`
	End           int      `json:"end"`
	Frames        int      `json:"frames"`
	AssetsCopied  int      `json:"assets_copied"`
	AssetsSkipped int      `json:"assets_skipped"`
	Missing       []string `json:"missing,omitempty"`
	Unsafe        []string `json:"unsafe,omitempty"`
	Bytes         int64    `json:"bytes"`
}

func newCutCommand(ctx *commandContext) *cobra.Command {
	var (
		req        curate.CutRequest
		dropCams   []string
		dropGroups []string
	)

	cmd := &cobra.Command{
		Use:   "cut",
		Short: "Cut a frame range of one episode into a new episode",
		Long: "Cut keeps frames [start, end) of --episode and writes them as --out-episode in the\n" +
			"same task root. Only the images and audio referenced by the kept frames are copied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.taskRoot()
			if err != nil {
				return err
			}
			opts, err := ctx.curateOptions(cmd)
			if err != nil {
				return err
			}
			req.TaskRoot = root
			req.Filter = buildFilter(dropCams, dropGroups)

			store := episode.NewStore(root, opts.Layout)
			source := store.Resolve(req.Episode).Dir
			dest := store.Resolve(req.OutEpisode).Dir

			return ctx.recordRun(cmd, journal.OperationCut, source, dest, func(run *journal.Run) error {
				result, err := curate.CutEpisode(req, opts)
				run.Frames = result.Report.Frames
				run.AssetsCopied = result.Report.Copied()
				run.AssetsSkipped = result.Report.Skipped()
				run.BytesCopied = result.Report.Bytes
				if err != nil {
					return err
				}
				run.Episodes = 1
				return printCutResult(cmd, ctx.jsonOutput(), result)
			})
		},
	}

	cmd.Flags().IntVar(&req.Episode, "episode", 0, "Input episode index (12 -> episode_0012)")
	cmd.Flags().IntVar(&req.Start, "start", 0, "Start frame index (0-based, inclusive)")
	cmd.Flags().IntVar(&req.End, "end", 0, "End frame index (exclusive)")
	cmd.Flags().IntVar(&req.OutEpisode, "out-episode", 0, "Output episode index")
	cmd.Flags().BoolVar(&req.KeepIdx, "keep-idx", false, "Keep original idx values instead of renumbering from 0")
	cmd.Flags().BoolVar(&req.Overwrite, "overwrite", false, "Delete a populated output episode first")
	cmd.Flags().StringSliceVar(&dropCams, "drop-cameras", nil, "Color stream keys to drop (comma-separated)")
	cmd.Flags().StringSliceVar(&dropGroups, "drop-joint-groups", nil, "Joint groups to drop (comma-separated)")
	for _, name := range []string{"episode", "end", "out-episode"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printCutResult(cmd *cobra.Command, asJSON bool, result curate.CutResult) error {
	report := result.Report
	if asJSON {
		return writeJSON(cmd, cutResultJSON{
			Source:        result.Source,
			Destination:   result.Destination,
			Start:         result.Start,
			End:           result.End,
			Frames:        report.Frames,
			AssetsCopied:  report.Copied(),
			AssetsSkipped: report.Skipped(),
			Missing:       report.Missing(),
			Unsafe:        report.Unsafe(),
			Bytes:         report.Bytes,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Written cut episode: %s\n", result.Destination)
	fmt.Fprintf(out, "Frames: %d  (from [%d:%d) of %d)\n", report.Frames, result.Start, result.End, result.SourceFrames)
	fmt.Fprintf(out, "Assets: %d copied, %d skipped (%s)\n", report.Copied(), report.Skipped(), textutil.FormatBytes(report.Bytes))
	for _, path := range report.Missing() {
		fmt.Fprintf(out, "  missing at source: %s\n", path)
	}
	for _, path := range report.Unsafe() {
		fmt.Fprintf(out, "  unsafe reference: %s\n", path)
	}
	return nil
}
