package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"episodekit/internal/journal"
	"episodekit/internal/textutil"
)

type runJSON struct {
	ID            string     `json:"id"`
	Operation     string     `json:"operation"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	Destination   string     `json:"destination"`
	Episodes      int        `json:"episodes"`
	Frames        int        `json:"frames"`
	AssetsCopied  int        `json:"assets_copied"`
	AssetsSkipped int        `json:"assets_skipped"`
	Bytes         int64      `json:"bytes"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded curation runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return usageErrorf("--limit must be positive")
			}
			return ctx.withJournal(func(store *journal.Store) error {
				if store == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Run journal disabled ([journal] enabled = false)")
					return nil
				}
				if len(args) == 1 {
					run, err := store.Get(commandCtx(cmd), args[0])
					if err != nil {
						return err
					}
					if run == nil {
						return fmt.Errorf("run %s not found", args[0])
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, toRunJSON(run))
					}
					printRun(cmd, run)
					return nil
				}

				runs, err := store.Recent(commandCtx(cmd), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					payload := make([]runJSON, 0, len(runs))
					for _, run := range runs {
						payload = append(payload, toRunJSON(run))
					}
					return writeJSON(cmd, payload)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID[:8],
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						run.Operation,
						string(run.Status),
						strconv.Itoa(run.Episodes),
						strconv.Itoa(run.Frames),
						fmt.Sprintf("%d/%d", run.AssetsCopied, run.AssetsSkipped),
						textutil.FormatBytes(run.BytesCopied),
						run.Destination,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{left("Run"), left("Started"), left("Op"), left("Status"), right("Episodes"), right("Frames"), right("Copied/Skipped"), right("Size"), left("Destination")},
					rows,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func toRunJSON(run *journal.Run) runJSON {
	out := runJSON{
		ID:            run.ID,
		Operation:     run.Operation,
		Status:        string(run.Status),
		Source:        run.Source,
		Destination:   run.Destination,
		Episodes:      run.Episodes,
		Frames:        run.Frames,
		AssetsCopied:  run.AssetsCopied,
		AssetsSkipped: run.AssetsSkipped,
		Bytes:         run.BytesCopied,
		Error:         run.Error,
		StartedAt:     run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}

func printRun(cmd *cobra.Command, run *journal.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:         %s\n", run.ID)
	fmt.Fprintf(out, "Operation:   %s\n", run.Operation)
	fmt.Fprintf(out, "Status:      %s\n", run.Status)
	fmt.Fprintf(out, "Source:      %s\n", run.Source)
	fmt.Fprintf(out, "Destination: %s\n", run.Destination)
	fmt.Fprintf(out, "Started:     %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Duration:    %s\n", run.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(out, "Episodes:    %d\n", run.Episodes)
	fmt.Fprintf(out, "Frames:      %d\n", run.Frames)
	fmt.Fprintf(out, "Assets:      %d copied, %d skipped (%s)\n", run.AssetsCopied, run.AssetsSkipped, textutil.FormatBytes(run.BytesCopied))
	if run.Error != "" {
		fmt.Fprintf(out, "Error:       %s\n", run.Error)
	}
}
