package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chaptersplit/internal/chapters"
	"chaptersplit/internal/logging"
	"chaptersplit/internal/media/ffmpeg"
	"chaptersplit/internal/services"
)

// Error reports the chapter whose extraction failed.
type Error struct {
	Ordinal int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: chapter %d: %v", services.ErrSegmentation, e.Ordinal, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches services.ErrSegmentation.
func (e *Error) Is(target error) bool { return target == services.ErrSegmentation }

// Request describes one split of an input file.
type Request struct {
	Input     string
	OutputDir string
	Extension string
	Chapters  []chapters.Descriptor
}

// Executor extracts chapters one at a time with stream copy.
type Executor struct {
	binary string
	logger *slog.Logger
	run    ffmpeg.Runner
}

// NewExecutor constructs an executor driving the given ffmpeg binary.
func NewExecutor(binary string, logger *slog.Logger) *Executor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Executor{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "segment"),
		run:    ffmpeg.DefaultRunner,
	}
}

// WithCommandRunner swaps the command runner, for tests.
func (e *Executor) WithCommandRunner(r ffmpeg.Runner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// Split writes one file per chapter in ordinal order and returns their paths.
// The first failure stops the run and removes only that chapter's partial
// output; files already written are left in place.
func (e *Executor) Split(ctx context.Context, req Request) ([]string, error) {
	if e == nil {
		return nil, fmt.Errorf("segment executor not initialized")
	}
	ctx = services.WithStage(ctx, "segment")
	outputs := make([]string, 0, len(req.Chapters))
	for _, chapter := range req.Chapters {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		output := filepath.Join(req.OutputDir, chapter.FileName(req.Extension))
		chapterCtx := services.WithChapter(ctx, chapter.Ordinal)
		logging.WithContext(chapterCtx, e.logger).Info(
			fmt.Sprintf("extracting chapter %d: %s", chapter.Ordinal, chapter.SafeTitle),
			logging.String("title", chapter.Title),
			logging.String("start", chapter.Start),
			logging.String("end", chapter.End),
			logging.String("output", filepath.Base(output)),
		)
		if err := e.run(ctx, e.binary, ffmpeg.SegmentArgs(req.Input, chapter.Start, chapter.End, output)...); err != nil {
			if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				e.logger.Warn("partial chapter output not removed", logging.String("output", output), logging.Error(rmErr))
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outputs, ctxErr
			}
			return outputs, &Error{Ordinal: chapter.Ordinal, Err: err}
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}
