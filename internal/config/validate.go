package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLayout() error {
	if c.Layout.IndexWidth < 1 || c.Layout.IndexWidth > 9 {
		return fmt.Errorf("layout.index_width must be between 1 and 9, got %d", c.Layout.IndexWidth)
	}
	if strings.ContainsAny(c.Layout.EpisodePrefix, `/\`) {
		return fmt.Errorf("layout.episode_prefix must not contain path separators: %q", c.Layout.EpisodePrefix)
	}
	name := c.Layout.MetadataFile
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("layout.metadata_file must be a bare file name, got %q", name)
	}
	return nil
}

func (c *Config) validatePublish() error {
	if !c.Publish.Enabled {
		return nil
	}
	if c.Publish.Bucket == "" {
		return errors.New("publish.bucket must be set when publish.enabled is true")
	}
	if (c.Publish.AccessKeyID == "") != (c.Publish.SecretAccessKey == "") {
		return errors.New("publish.access_key_id and publish.secret_access_key must be set together")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
