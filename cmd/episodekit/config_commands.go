package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"episodekit/internal/config"
)

var skipConfigLoad = map[string]string{"skipConfigLoad": "true"}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

// configTarget resolves --path, falling back to the default location.
func configTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(path)
}

func newConfigInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(path)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.task_root (or EPISODEKIT_TASK_ROOT) before cutting or filtering episodes.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report the effective settings",
		Args:        cobra.NoArgs,
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.flags.config))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			source := path
			if !exists {
				source += " (not found, using defaults)"
			}
			publish := "disabled"
			if cfg.Publish.Enabled {
				publish = "s3://" + cfg.Publish.Bucket
			}
			journal := "disabled"
			if cfg.Journal.Enabled {
				journal = cfg.JournalPath()
			}
			rows := [][]string{
				{"config", source},
				{"task_root", valueOrDash(cfg.Paths.TaskRoot)},
				{"state_dir", cfg.Paths.StateDir},
				{"layout", fmt.Sprintf("%s%0*d/%s", cfg.Layout.EpisodePrefix, cfg.Layout.IndexWidth, 0, cfg.Layout.MetadataFile)},
				{"journal", journal},
				{"publish", publish},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]column{left("Setting"), left("Value")}, rows))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
