package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"episodekit/internal/config"
	"episodekit/internal/curate"
	"episodekit/internal/episode"
	"episodekit/internal/journal"
	"episodekit/internal/logging"
)

type globalFlags struct {
	config   string
	taskRoot string
	logLevel string
	json     bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if root := strings.TrimSpace(c.flags.taskRoot); root != "" {
			expanded, err := config.ExpandPath(root)
			if err != nil {
				c.configErr = fmt.Errorf("--task-root: %w", err)
				return
			}
			cfg.Paths.TaskRoot = expanded
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

// loggerFor builds the process logger once, writing to the command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	})
	return c.logger, c.loggerErr
}

// taskRoot returns the configured dataset directory or a usage error.
func (c *commandContext) taskRoot() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.TaskRoot == "" {
		return "", usageErrorf("task root not set (pass --task-root, set paths.task_root, or export EPISODEKIT_TASK_ROOT)")
	}
	return cfg.Paths.TaskRoot, nil
}

func (c *commandContext) episodeStore() (*episode.Store, error) {
	root, err := c.taskRoot()
	if err != nil {
		return nil, err
	}
	return episode.NewStore(root, c.configValue().EpisodeLayout()), nil
}

// curateOptions maps the [materialize] and [layout] sections onto workflow options.
func (c *commandContext) curateOptions(cmd *cobra.Command) (curate.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return curate.Options{}, err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return curate.Options{}, err
	}
	return curate.Options{
		Layout:             cfg.EpisodeLayout(),
		CopyAuxiliaryFiles: cfg.Materialize.CopyAuxiliaryFiles,
		KeepStreamDirs:     cfg.Materialize.KeepStreamDirs,
		VerifyCopies:       cfg.Materialize.VerifyCopies,
		PreserveTimes:      cfg.Materialize.PreserveTimes,
		LockDir:            cfg.LockDir(),
		Logger:             logger,
		Progress:           newProgressReporter(cmd, c.jsonOutput()),
	}, nil
}

// withJournal opens the run journal when enabled. fn receives nil when the
// journal is disabled.
func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fn(nil)
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// recordRun wraps fn in a journal entry. Journal failures are logged and never
// mask the outcome of fn.
func (c *commandContext) recordRun(cmd *cobra.Command, operation, source, destination string, fn func(*journal.Run) error) error {
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, "journal")
	cfg := c.configValue()
	if cfg == nil || !cfg.Journal.Enabled {
		return fn(&journal.Run{Operation: operation, Source: source, Destination: destination})
	}

	ctx := commandCtx(cmd)
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable; run will not be recorded", "journal_open_failed",
			logging.Error(err),
			logging.String(logging.FieldPath, cfg.JournalPath()),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or disable [journal]"),
		)
		return fn(&journal.Run{Operation: operation, Source: source, Destination: destination})
	}
	defer store.Close()

	run, err := store.Begin(ctx, operation, source, destination)
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run start", "journal_write_failed", logging.Error(err))
		return fn(&journal.Run{Operation: operation, Source: source, Destination: destination})
	}
	runErr := fn(run)
	if err := store.Finish(context.WithoutCancel(ctx), run, runErr); err != nil {
		logging.WarnWithContext(logger, "failed to record run outcome", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldRunID, run.ID),
		)
	}
	return runErr
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

var errPublishDisabled = errors.New("publishing disabled (set [publish] enabled = true and a bucket)")
