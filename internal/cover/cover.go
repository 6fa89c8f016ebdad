package cover

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"chaptersplit/internal/logging"
	"chaptersplit/internal/media/ffmpeg"
	"chaptersplit/internal/media/ffprobe"
	"chaptersplit/internal/services"
)

// FileName is the cover image written beside the segments.
const FileName = "folder.jpg"

// FindAttachedPicture returns the index of the first stream flagged as an
// attached picture.
func FindAttachedPicture(doc ffprobe.Document) (int, bool) {
	for _, raw := range doc.Streams() {
		flag, ok := ffprobe.Path(raw, "disposition", "attached_pic")
		if !ok {
			continue
		}
		if v, ok := ffprobe.Int(flag); !ok || v != 1 {
			continue
		}
		stream, _ := ffprobe.Object(raw)
		index, ok := ffprobe.Int(stream["index"])
		if !ok || index < 0 {
			continue
		}
		return int(index), true
	}
	return 0, false
}

// Extractor saves embedded cover art.
type Extractor struct {
	binary string
	logger *slog.Logger
	run    ffmpeg.Runner
}

// NewExtractor constructs a cover extractor driving the given ffmpeg binary.
func NewExtractor(binary string, logger *slog.Logger) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "cover"),
		run:    ffmpeg.DefaultRunner,
	}
}

// WithCommandRunner swaps the command runner, for tests.
func (e *Extractor) WithCommandRunner(r ffmpeg.Runner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// Extract writes folder.jpg when the input carries an attached picture. It
// returns the written path, or "" when there is no cover or extraction failed.
// Failures are logged, never returned.
func (e *Extractor) Extract(ctx context.Context, doc ffprobe.Document, input, outputDir string) string {
	if e == nil {
		return ""
	}
	ctx = services.WithStage(ctx, "cover")
	logger := logging.WithContext(ctx, e.logger)

	index, ok := FindAttachedPicture(doc)
	if !ok {
		logger.Info("no embedded cover found")
		return ""
	}

	output := filepath.Join(outputDir, FileName)
	if err := e.run(ctx, e.binary, ffmpeg.CoverArgs(input, index, output)...); err != nil {
		logging.WarnWithContext(logger, "cover extraction failed", "cover_extract_failed",
			logging.Int("stream_index", index),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("inspect stream %d of the input with ffprobe", index)),
			logging.String(logging.FieldImpact, "output has no folder.jpg"),
		)
		return ""
	}
	logger.Info("extracted cover", logging.Int("stream_index", index), logging.String("output", FileName))
	return output
}
