package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"episodekit/internal/materialize"
	"episodekit/internal/preflight"
)

type checkJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type lockCleanupJSON struct {
	Removed []string `json:"removed"`
	Held    []string `json:"held"`
	Errors  []string `json:"errors,omitempty"`
}

type doctorJSON struct {
	Checks []checkJSON      `json:"checks"`
	Locks  *lockCleanupJSON `json:"locks,omitempty"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var cleanLocks bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, journal, and publish settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			failed := preflight.Failed(results)

			var cleanup *materialize.CleanupResult
			if cleanLocks {
				logger, err := ctx.loggerFor(cmd)
				if err != nil {
					return err
				}
				res := materialize.CleanStaleLocks(cfg.LockDir(), logger)
				cleanup = &res
			}

			if ctx.jsonOutput() {
				payload := doctorJSON{Checks: make([]checkJSON, 0, len(results))}
				for _, r := range results {
					payload.Checks = append(payload.Checks, checkJSON(r))
				}
				if cleanup != nil {
					locks := &lockCleanupJSON{Removed: cleanup.Removed, Held: cleanup.Held}
					for _, e := range cleanup.Errors {
						locks.Errors = append(locks.Errors, fmt.Sprintf("%s: %v", e.Path, e.Error))
					}
					payload.Locks = locks
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("episodekit doctor", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					} else if r.Detail == "disabled" {
						kind = statusInfo
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
				if cleanup != nil {
					kind := statusOK
					if len(cleanup.Errors) > 0 {
						kind = statusWarn
					}
					detail := fmt.Sprintf("%d removed, %d held", len(cleanup.Removed), len(cleanup.Held))
					fmt.Fprintln(out, renderStatusLine("Stale locks", kind, detail, colorize))
					for _, e := range cleanup.Errors {
						fmt.Fprintf(out, "  %s: %v\n", e.Path, e.Error)
					}
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cleanLocks, "clean-locks", false, "Remove lock files left by interrupted runs")
	return cmd
}
