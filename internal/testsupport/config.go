package testsupport

import (
	"path/filepath"
	"testing"

	"chaptersplit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a default config whose log directory lives in a unique
// temp directory, then applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Transcode.Workers = 2

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFFmpeg points the config at a (usually fake) ffmpeg binary.
func WithFFmpeg(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFmpeg = path
	}
}

// WithFFprobe points the config at a (usually fake) ffprobe binary.
func WithFFprobe(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFprobe = path
	}
}

// WithSanitize enables title sanitization.
func WithSanitize() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.Sanitize = true
	}
}

// WithKeep disables the transcode stage.
func WithKeep() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.Enabled = false
	}
}

// WithoutVerify disables decoding of encoded output, for fakes that do not
// write real MP3 frames.
func WithoutVerify() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.Verify = false
	}
}
