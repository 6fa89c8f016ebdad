package config

const (
	defaultConfigPath   = "~/.config/chaptersplit/config.toml"
	projectConfigName   = "chaptersplit.toml"
	defaultFFmpeg       = "ffmpeg"
	defaultFFprobe      = "ffprobe"
	defaultContainerExt = "m4b"
	defaultCodec        = "libmp3lame"
	defaultExtension    = "mp3"
	defaultQuality      = 2
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Transcode: Transcode{
			Enabled:   true,
			Codec:     defaultCodec,
			Extension: defaultExtension,
			Quality:   defaultQuality,
			Verify:    true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
