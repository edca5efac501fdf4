package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"episodekit/internal/journal"
	"episodekit/internal/publish"
	"episodekit/internal/textutil"
)

type publishResultJSON struct {
	Episode  string   `json:"episode"`
	Bucket   string   `json:"bucket"`
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
	Bytes    int64    `json:"bytes"`
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "publish <episode>...",
		Short: "Upload materialized episodes to object storage",
		Long: "Publish uploads every file of each episode to s3://<bucket>/<prefix>/<name>/.\n" +
			"Existing objects are never overwritten; they are reported as skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return usageErrorf("--name applies to a single episode")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Publish.Enabled {
				return errPublishDisabled
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			publisher, err := publish.New(commandCtx(cmd), publish.Config{
				Bucket:          cfg.Publish.Bucket,
				Region:          cfg.Publish.Region,
				Endpoint:        cfg.Publish.Endpoint,
				PathStyle:       cfg.Publish.PathStyle,
				Prefix:          cfg.Publish.Prefix,
				AccessKeyID:     cfg.Publish.AccessKeyID,
				SecretAccessKey: cfg.Publish.SecretAccessKey,
				SessionToken:    cfg.Publish.SessionToken,
			}, logger)
			if err != nil {
				return err
			}

			var results []publishResultJSON
			for _, arg := range args {
				h, err := resolveEpisodeArg(ctx, arg)
				if err != nil {
					return err
				}
				episodeName := name
				if episodeName == "" {
					episodeName = h.Name()
				}
				target := fmt.Sprintf("s3://%s/%s", cfg.Publish.Bucket, publisher.Key(episodeName, ""))
				err = ctx.recordRun(cmd, journal.OperationPublish, h.Dir, target, func(run *journal.Run) error {
					report, err := publisher.PublishEpisode(commandCtx(cmd), h.Dir, episodeName)
					run.Episodes = 1
					run.AssetsCopied = len(report.Uploaded)
					run.AssetsSkipped = len(report.Skipped)
					run.BytesCopied = report.Bytes
					if err != nil {
						return err
					}
					results = append(results, publishResultJSON{
						Episode:  episodeName,
						Bucket:   report.Bucket,
						Uploaded: report.Uploaded,
						Skipped:  report.Skipped,
						Bytes:    report.Bytes,
					})
					if !ctx.jsonOutput() {
						fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d uploaded, %d already present (%s)\n",
							h.Dir, target, len(report.Uploaded), len(report.Skipped), textutil.FormatBytes(report.Bytes))
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Object name for the episode (default: directory name)")
	return cmd
}
