package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizePublish()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.TaskRoot = strings.TrimSpace(c.Paths.TaskRoot)
	if c.Paths.TaskRoot == "" {
		if value, ok := os.LookupEnv("EPISODEKIT_TASK_ROOT"); ok {
			c.Paths.TaskRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.TaskRoot, err = expandPath(c.Paths.TaskRoot); err != nil {
		return fmt.Errorf("paths.task_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLayout() {
	if c.Layout.EpisodePrefix == "" {
		c.Layout.EpisodePrefix = defaultEpisodePrefix
	}
	if c.Layout.IndexWidth == 0 {
		c.Layout.IndexWidth = defaultIndexWidth
	}
	c.Layout.MetadataFile = strings.TrimSpace(c.Layout.MetadataFile)
	if c.Layout.MetadataFile == "" {
		c.Layout.MetadataFile = defaultMetadataFile
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	c.Publish.Endpoint = strings.TrimSpace(c.Publish.Endpoint)
	c.Publish.Prefix = strings.Trim(strings.TrimSpace(c.Publish.Prefix), "/")
	c.Publish.Region = strings.TrimSpace(c.Publish.Region)
	if c.Publish.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.Publish.Region = strings.TrimSpace(value)
		} else {
			c.Publish.Region = defaultPublishRegion
		}
	}
	for _, field := range []struct {
		value *string
		env   string
	}{
		{&c.Publish.AccessKeyID, "AWS_ACCESS_KEY_ID"},
		{&c.Publish.SecretAccessKey, "AWS_SECRET_ACCESS_KEY"},
		{&c.Publish.SessionToken, "AWS_SESSION_TOKEN"},
	} {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			if value, ok := os.LookupEnv(field.env); ok {
				*field.value = strings.TrimSpace(value)
			}
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
