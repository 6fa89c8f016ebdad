package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"chaptersplit/internal/chapters"
	"chaptersplit/internal/config"
	"chaptersplit/internal/cover"
	"chaptersplit/internal/fileutil"
	"chaptersplit/internal/logging"
	"chaptersplit/internal/media/ffmpeg"
	"chaptersplit/internal/media/ffprobe"
	"chaptersplit/internal/metadata"
	"chaptersplit/internal/preflight"
	"chaptersplit/internal/segment"
	"chaptersplit/internal/services"
	"chaptersplit/internal/transcode"
)

// Request carries the per-run options resolved from the command line.
type Request struct {
	Input     string
	OutputDir string
	Keep      bool
	Quality   int
	Sanitize  bool
}

// Result describes what a completed run produced.
type Result struct {
	OutputDir string
	Extension string
	Chapters  []chapters.Descriptor
	Segments  []string
	Metadata  metadata.Paths
	Cover     string
	Transcode transcode.Result
	// Transcoded is false when the transcode stage was skipped.
	Transcoded bool
}

// DefaultOutputDir returns "<input-stem>_chapters".
func DefaultOutputDir(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_chapters"
}

// Pipeline splits one chaptered file per Run call.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	segmenter  *segment.Executor
	covers     *cover.Extractor
	transcoder *transcode.Transcoder
}

// New wires the stage components from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	ffmpegBin := cfg.FFmpegBinary()
	p := &Pipeline{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		segmenter:  segment.NewExecutor(ffmpegBin, logger),
		covers:     cover.NewExtractor(ffmpegBin, logger),
		transcoder: transcode.NewTranscoder(ffmpegBin, logger),
	}
	if !cfg.Transcode.Verify {
		p.transcoder.WithVerifier(nil)
	}
	return p
}

// WithCommandRunner swaps the ffmpeg runner used by every stage.
func (p *Pipeline) WithCommandRunner(r ffmpeg.Runner) {
	p.segmenter.WithCommandRunner(r)
	p.covers.WithCommandRunner(r)
	p.transcoder.WithCommandRunner(r)
}

// WithVerifier swaps the transcode output verifier.
func (p *Pipeline) WithVerifier(v transcode.Verifier) {
	p.transcoder.WithVerifier(v)
}

// Run executes every stage in order. The first fatal error stops the run and
// is returned; cover and per-file transcode problems are only logged.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("pipeline not initialized")
	}
	if strings.TrimSpace(req.Input) == "" {
		return Result{}, services.Wrap(services.ErrSetup, "preflight", "input", "no input file given", nil)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		req.OutputDir = DefaultOutputDir(req.Input)
	}

	result := Result{OutputDir: req.OutputDir, Extension: p.cfg.SegmentExtension(req.Input)}
	p.logRequest(ctx, req, result.Extension)

	if err := p.stage(ctx, "preflight", func(ctx context.Context, _ *slog.Logger) error {
		return preflight.Err(preflight.RunAll(p.cfg, req.Input, req.OutputDir))
	}); err != nil {
		return result, err
	}

	unlock, err := p.prepareOutput(ctx, req.OutputDir)
	if err != nil {
		return result, err
	}
	defer unlock()

	var doc ffprobe.Document
	if err := p.stage(ctx, "probe", func(ctx context.Context, _ *slog.Logger) error {
		var err error
		doc, err = ffprobe.Inspect(ctx, p.cfg.FFprobeBinary(), req.Input)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage(ctx, "chapters", func(_ context.Context, logger *slog.Logger) error {
		descriptors, err := chapters.Extract(doc, chapters.Options{
			Sanitize:       req.Sanitize,
			FoldDiacritics: p.cfg.Split.FoldDiacritics,
		})
		if err != nil {
			return err
		}
		result.Chapters = descriptors
		logger.Info("chapters found", logging.Int("count", len(descriptors)))
		return nil
	}); err != nil {
		return result, err
	}

	if err := p.stage(ctx, "segment", func(ctx context.Context, _ *slog.Logger) error {
		segments, err := p.segmenter.Split(ctx, segment.Request{
			Input:     req.Input,
			OutputDir: req.OutputDir,
			Extension: result.Extension,
			Chapters:  result.Chapters,
		})
		result.Segments = segments
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage(ctx, "metadata", func(context.Context, *slog.Logger) error {
		paths, err := metadata.Synthesize(doc, req.OutputDir)
		result.Metadata = paths
		return err
	}); err != nil {
		return result, err
	}

	result.Cover = p.covers.Extract(ctx, doc, req.Input, req.OutputDir)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if req.Keep {
		p.logger.Info("transcode disabled; keeping original segments", logging.String("extension", result.Extension))
		return result, nil
	}
	if strings.EqualFold(result.Extension, p.cfg.Transcode.Extension) {
		logging.WarnWithContext(p.logger, "segments already use the transcode extension; skipping transcode", "transcode_skipped",
			logging.String("extension", result.Extension),
			logging.String(logging.FieldErrorHint, "set split.container_ext to a different extension"),
			logging.String(logging.FieldImpact, "segments left in source format"),
		)
		return result, nil
	}

	if err := p.stage(ctx, "transcode", func(ctx context.Context, _ *slog.Logger) error {
		res, err := p.transcoder.Run(ctx, req.OutputDir, transcode.Options{
			SourceExt: result.Extension,
			TargetExt: p.cfg.Transcode.Extension,
			Codec:     p.cfg.Transcode.Codec,
			Quality:   req.Quality,
			Workers:   p.cfg.Transcode.Workers,
		})
		result.Transcode = res
		result.Transcoded = err == nil
		return err
	}); err != nil {
		return result, err
	}
	return result, nil
}

func (p *Pipeline) logRequest(ctx context.Context, req Request, ext string) {
	logging.WithContext(ctx, p.logger).Info("chapter split requested",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", req.Input),
		logging.String("output_dir", req.OutputDir),
		logging.String("segment_ext", ext),
		logging.Bool("keep", req.Keep),
		logging.Int("quality", req.Quality),
		logging.Bool("sanitize", req.Sanitize),
	)
}

// prepareOutput locks the output directory, then clears and recreates it.
// The returned func releases the lock.
func (p *Pipeline) prepareOutput(ctx context.Context, dir string) (func(), error) {
	logger := logging.WithContext(services.WithStage(ctx, "prepare"), p.logger)
	lockPath := filepath.Clean(dir) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "prepare", "create output parent", filepath.Dir(lockPath), err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrSetup, "prepare", "lock output", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrSetup, "prepare", "lock output", "another run is writing "+dir, nil)
	}
	release := func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Debug("lock file not removed", logging.Error(err))
		}
	}

	existed, err := fileutil.ResetDir(dir)
	if err != nil {
		release()
		return nil, services.Wrap(services.ErrIO, "prepare", "reset output", dir, err)
	}
	if existed {
		logging.WarnWithContext(logger, "output directory existed; replaced it", "output_replaced",
			logging.String("output_dir", dir),
			logging.String(logging.FieldErrorHint, "pass --output to keep earlier results"),
			logging.String(logging.FieldImpact, "previous contents deleted"),
		)
	}
	return release, nil
}
