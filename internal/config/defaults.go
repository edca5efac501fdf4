package config

const (
	defaultConfigPath    = "~/.config/episodekit/config.toml"
	projectConfigName    = "episodekit.toml"
	defaultStateDir      = "~/.local/share/episodekit"
	defaultEpisodePrefix = "episode_"
	defaultIndexWidth    = 4
	defaultMetadataFile  = "data.json"
	defaultPublishRegion = "us-east-1"
	defaultPublishPrefix = "episodes"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Layout: Layout{
			EpisodePrefix: defaultEpisodePrefix,
			IndexWidth:    defaultIndexWidth,
			MetadataFile:  defaultMetadataFile,
		},
		Materialize: Materialize{
			CopyAuxiliaryFiles: true,
			KeepStreamDirs:     true,
			PreserveTimes:      true,
		},
		Journal: Journal{
			Enabled: true,
		},
		Publish: Publish{
			Region: defaultPublishRegion,
			Prefix: defaultPublishPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
