package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tcolgate/mp3"
	"golang.org/x/sync/errgroup"

	"chaptersplit/internal/fileutil"
	"chaptersplit/internal/logging"
	"chaptersplit/internal/media/ffmpeg"
	"chaptersplit/internal/services"
)

// Verifier checks that an encoded file is usable before its source is deleted.
type Verifier func(path string) error

// Options configures a transcode run.
type Options struct {
	// SourceExt selects the segments to convert.
	SourceExt string
	// TargetExt names the converted siblings.
	TargetExt string
	Codec     string
	Quality   int
	// Workers bounds concurrent encodes; zero means runtime.NumCPU().
	Workers int
}

// Failure records a segment that could not be converted.
type Failure struct {
	Source string
	Err    error
}

// Result summarizes a transcode run. Both lists are sorted by source name.
type Result struct {
	Converted []string
	Failed    []Failure
}

// Transcoder re-encodes segments concurrently.
type Transcoder struct {
	binary string
	logger *slog.Logger
	run    ffmpeg.Runner
	verify Verifier
}

// NewTranscoder constructs a transcoder that verifies output as MP3.
func NewTranscoder(binary string, logger *slog.Logger) *Transcoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "transcode"),
		run:    ffmpeg.DefaultRunner,
		verify: VerifyMP3,
	}
}

// WithCommandRunner swaps the command runner, for tests.
func (t *Transcoder) WithCommandRunner(r ffmpeg.Runner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// WithVerifier swaps the output verifier. A nil verifier accepts any
// non-empty output file.
func (t *Transcoder) WithVerifier(v Verifier) {
	if t != nil {
		t.verify = v
	}
}

// Run converts every segment in dir with opts.SourceExt. Per-file failures are
// logged and collected in the result. The returned error is reserved for
// failing to list dir and for ctx being cancelled; segments not yet started
// when ctx is done are skipped and reported as failed.
func (t *Transcoder) Run(ctx context.Context, dir string, opts Options) (Result, error) {
	if t == nil {
		return Result{}, fmt.Errorf("transcoder not initialized")
	}
	ctx = services.WithStage(ctx, "transcode")
	logger := logging.WithContext(ctx, t.logger)

	sources, err := fileutil.ListByExtension(dir, opts.SourceExt)
	if err != nil {
		return Result{}, services.Wrap(services.ErrIO, "transcode", "list segments", dir, err)
	}
	if len(sources) == 0 {
		logger.Info("no segments to transcode", logging.String("extension", opts.SourceExt))
		return Result{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger.Info("transcoding segments",
		logging.Int("segments", len(sources)),
		logging.Int("workers", workers),
		logging.String("codec", opts.Codec),
		logging.Int("quality", opts.Quality),
	)

	var group errgroup.Group
	errs := make([]error, len(sources))
	target := make([]string, len(sources))
	group.SetLimit(workers)
	for i, source := range sources {
		target[i] = fileutil.SwapExtension(source, opts.TargetExt)
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			err := t.convert(ctx, source, target[i], opts)
			errs[i] = err
			switch {
			case err == nil:
				logger.Info("transcoded segment", logging.String("file", filepath.Base(target[i])))
			case ctx.Err() == nil:
				logging.WarnWithContext(logger, "transcode failed; keeping original", "transcode_failed",
					logging.String("file", filepath.Base(source)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "re-run ffmpeg on the kept file to see the encoder diagnostic"),
					logging.String(logging.FieldImpact, "segment left in its original format"),
				)
			}
			return nil
		})
	}
	_ = group.Wait() // tasks report through errs

	var result Result
	for i, source := range sources {
		if errs[i] != nil {
			result.Failed = append(result.Failed, Failure{Source: source, Err: errs[i]})
			continue
		}
		result.Converted = append(result.Converted, target[i])
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("transcode interrupted", logging.Int("converted", len(result.Converted)), logging.Int("not_converted", len(result.Failed)))
		return result, err
	}
	return result, nil
}

// convert encodes one segment and removes the source only after the output
// passes verification. A failed attempt removes whatever output was written.
func (t *Transcoder) convert(ctx context.Context, source, target string, opts Options) error {
	if err := t.run(ctx, t.binary, ffmpeg.TranscodeArgs(source, opts.Codec, opts.Quality, target)...); err != nil {
		removeQuietly(target)
		return err
	}
	if err := t.check(target); err != nil {
		removeQuietly(target)
		return fmt.Errorf("verify %s: %w", filepath.Base(target), err)
	}
	if err := os.Remove(source); err != nil {
		return fmt.Errorf("remove original: %w", err)
	}
	return nil
}

func (t *Transcoder) check(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return errors.New("output is empty")
	}
	if t.verify == nil {
		return nil
	}
	return t.verify(target)
}

// VerifyMP3 requires path to decode at least one MPEG audio frame.
func VerifyMP3(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	if err := decoder.Decode(&frame, &skipped); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("no mp3 frames found")
		}
		return err
	}
	return nil
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
