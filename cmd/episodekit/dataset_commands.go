package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"episodekit/internal/curate"
	"episodekit/internal/journal"
	"episodekit/internal/textutil"
	"episodekit/internal/transform"
)

type datasetFlags struct {
	source     string
	destParent string
	suffix     string
	first      int
	last       int
	overwrite  bool
	dryRun     bool
	dropCams   []string
	dropGroups []string
	reparse    bool
}

type datasetEpisodeJSON struct {
	Name          string `json:"name"`
	Destination   string `json:"destination"`
	Frames        int    `json:"frames"`
	Assets        int    `json:"assets"`
	AssetsSkipped int    `json:"assets_skipped"`
	Bytes         int64  `json:"bytes"`
}

type datasetResultJSON struct {
	Source      string               `json:"source"`
	Destination string               `json:"destination"`
	DryRun      bool                 `json:"dry_run"`
	Verbatim    bool                 `json:"verbatim"`
	Frames      int                  `json:"frames"`
	Bytes       int64                `json:"bytes"`
	Episodes    []datasetEpisodeJSON `json:"episodes"`
}

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var flags datasetFlags
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Copy a range of episodes into a new dataset, dropping cameras or joint groups",
		Long: "Filter copies episodes [--init, --end] of --src into <dst-parent>/<src name><suffix>.\n" +
			"Dropped cameras are removed from every frame and their images are not copied; dropped\n" +
			"joint groups are removed from states, actions, and the joint/tactile name tables.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataset(cmd, ctx, journal.OperationFilter, flags, false)
		},
	}
	bindDatasetFlags(cmd, &flags)
	cmd.Flags().StringSliceVar(&flags.dropCams, "drop-cameras", nil, "Color stream keys to drop (comma-separated, e.g. color_1,color_2)")
	cmd.Flags().StringSliceVar(&flags.dropGroups, "drop-joint-groups", nil, "Joint groups to drop (comma-separated, e.g. right_arm,right_ee)")
	return cmd
}

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var flags datasetFlags
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy a range of episodes into a new dataset",
		Long: "Copy duplicates episodes [--init, --end] of --src into <dst-parent>/<src name><suffix>.\n" +
			"Episode directories are copied as-is unless --reparse is set, in which case only the\n" +
			"files referenced by each metadata document are copied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataset(cmd, ctx, journal.OperationCopy, flags, !flags.reparse)
		},
	}
	bindDatasetFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.reparse, "reparse", false, "Rewrite metadata and copy only referenced files")
	return cmd
}

func bindDatasetFlags(cmd *cobra.Command, flags *datasetFlags) {
	cmd.Flags().StringVar(&flags.source, "src", "", "Source dataset directory (default: the task root)")
	cmd.Flags().StringVar(&flags.destParent, "dst-parent", "", "Where to create the destination (default: parent of --src)")
	cmd.Flags().StringVar(&flags.suffix, "suffix", "", "Suffix appended to the source directory name for the destination")
	cmd.Flags().IntVar(&flags.first, "init", 0, "First episode index to copy (inclusive)")
	cmd.Flags().IntVar(&flags.last, "end", transform.OpenEnd, "Last episode index to copy (inclusive); -1 means through the last episode")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Delete a populated destination first")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print what would be done without writing")
	_ = cmd.MarkFlagRequired("suffix")
}

func runDataset(cmd *cobra.Command, ctx *commandContext, operation string, flags datasetFlags, verbatim bool) error {
	source := flags.source
	if source == "" {
		root, err := ctx.taskRoot()
		if err != nil {
			return err
		}
		source = root
	}
	opts, err := ctx.curateOptions(cmd)
	if err != nil {
		return err
	}
	filter := buildFilter(flags.dropCams, flags.dropGroups)
	plan, err := curate.Prepare(curate.DatasetRequest{
		Source:     source,
		DestParent: flags.destParent,
		Suffix:     flags.suffix,
		First:      flags.first,
		Last:       flags.last,
		Filter:     filter,
		Overwrite:  flags.overwrite,
		DryRun:     flags.dryRun,
		Verbatim:   verbatim,
	}, opts)
	if err != nil {
		return err
	}

	asJSON := ctx.jsonOutput()
	if !asJSON {
		printPlan(cmd.OutOrStdout(), plan, flags)
	}

	return ctx.recordRun(cmd, operation, plan.Source, plan.Destination, func(run *journal.Run) error {
		result, err := plan.Run(commandCtx(cmd))
		run.Episodes = len(result.Episodes)
		run.Frames = result.Frames()
		run.AssetsCopied, run.AssetsSkipped = result.AssetCounts()
		run.BytesCopied = result.Bytes()
		if plan.DryRun {
			run.Status = journal.StatusDryRun
			run.BytesCopied = 0
		}
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, datasetJSON(plan, result))
		}
		printDatasetResult(cmd.OutOrStdout(), plan, result)
		return nil
	})
}

func printPlan(out io.Writer, plan *curate.Plan, flags datasetFlags) {
	last := "last"
	if flags.last != transform.OpenEnd {
		last = strconv.Itoa(flags.last)
	}
	fmt.Fprintf(out, "Source:      %s\n", plan.Source)
	fmt.Fprintf(out, "Destination: %s\n", plan.Destination)
	fmt.Fprintf(out, "Episodes:    %d..%s (inclusive): %d\n", flags.first, last, len(plan.Episodes))
	if len(plan.Filter.DropCameras) > 0 {
		fmt.Fprintf(out, "Drop colors: %s\n", textutil.JoinKeys(plan.Filter.DropCameras))
	}
	if len(plan.Filter.DropJointGroups) > 0 {
		fmt.Fprintf(out, "Drop joint groups: %s\n", textutil.JoinKeys(plan.Filter.DropJointGroups))
	}
	if plan.Verbatim {
		fmt.Fprintln(out, "Mode:        verbatim copy")
	}
	if plan.Populated {
		verb := "Deleting"
		if plan.DryRun {
			verb = "Would delete"
		}
		fmt.Fprintf(out, "%s existing destination contents\n", verb)
	}
	fmt.Fprintln(out)
}

func printDatasetResult(out io.Writer, plan *curate.Plan, result curate.RunResult) {
	assetsHeader := "Assets"
	if plan.Verbatim {
		assetsHeader = "Files"
	}
	rows := make([][]string, 0, len(result.Episodes))
	for _, ep := range result.Episodes {
		skipped := "-"
		if ep.Report != nil {
			skipped = strconv.Itoa(ep.Report.Skipped())
		}
		rows = append(rows, []string{
			ep.Name,
			strconv.Itoa(ep.Frames),
			strconv.Itoa(ep.Assets),
			skipped,
			textutil.FormatBytes(ep.Bytes),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{left("Episode"), right("Frames"), right(assetsHeader), right("Skipped"), right("Size")},
		rows,
	))
	if result.DryRun {
		fmt.Fprintf(out, "Dry run: nothing written (%d frames, %s would be copied)\n", result.Frames(), textutil.FormatBytes(result.Bytes()))
		return
	}
	fmt.Fprintf(out, "Done. %d episodes, %d frames, %s copied\n", len(result.Episodes), result.Frames(), textutil.FormatBytes(result.Bytes()))
}

func datasetJSON(plan *curate.Plan, result curate.RunResult) datasetResultJSON {
	out := datasetResultJSON{
		Source:      result.Source,
		Destination: result.Destination,
		DryRun:      result.DryRun,
		Verbatim:    plan.Verbatim,
		Frames:      result.Frames(),
		Bytes:       result.Bytes(),
		Episodes:    make([]datasetEpisodeJSON, 0, len(result.Episodes)),
	}
	for _, ep := range result.Episodes {
		entry := datasetEpisodeJSON{
			Name:        ep.Name,
			Destination: ep.Destination,
			Frames:      ep.Frames,
			Assets:      ep.Assets,
			Bytes:       ep.Bytes,
		}
		if ep.Report != nil {
			entry.AssetsSkipped = ep.Report.Skipped()
		}
		out.Episodes = append(out.Episodes, entry)
	}
	return out
}
