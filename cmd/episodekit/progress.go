package main

import (
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// newProgressReporter renders one bar per episode on stderr. It returns nil
// when stderr is not a terminal or JSON output was requested.
func newProgressReporter(cmd *cobra.Command, jsonOutput bool) func(name string, done, total int) {
	out := cmd.ErrOrStderr()
	if jsonOutput || !isTerminal(out) {
		return nil
	}
	var (
		bar     *progressbar.ProgressBar
		current string
	)
	return func(name string, done, total int) {
		if bar == nil || name != current {
			if bar != nil {
				_ = bar.Finish()
			}
			current = name
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(out),
				progressbar.OptionSetDescription(name),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
		if done >= total {
			_ = bar.Finish()
			bar = nil
		}
	}
}
