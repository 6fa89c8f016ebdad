package pipeline

import (
	"context"
	"log/slog"
	"time"

	"chaptersplit/internal/logging"
	"chaptersplit/internal/services"
)

type stageFunc func(ctx context.Context, logger *slog.Logger) error

// stage runs fn with the stage name attached to its context and logs the
// start, completion, or failure.
func (p *Pipeline) stage(ctx context.Context, name string, fn stageFunc) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	if err := fn(stageCtx, logger); err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}
