package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"chaptersplit/internal/config"
	"chaptersplit/internal/services"
	"chaptersplit/internal/testsupport"
)

type fixture struct {
	cfg    *config.Config
	ffmpeg testsupport.FFmpegStub
	input  string
	output string
}

func newFixture(t *testing.T, probe string, opts testsupport.FFmpegOptions) fixture {
	t.Helper()
	work := t.TempDir()
	input := filepath.Join(work, "book.m4b")
	testsupport.WriteFile(t, input, 256)

	ffmpegStub := testsupport.NewFFmpegStub(t, opts)
	ffprobeStub := testsupport.NewFFprobeStub(t, probe, 0, "")
	cfg := testsupport.NewConfig(t,
		testsupport.WithFFmpeg(ffmpegStub.Path),
		testsupport.WithFFprobe(ffprobeStub),
		testsupport.WithoutVerify(),
	)
	return fixture{cfg: cfg, ffmpeg: ffmpegStub, input: input, output: filepath.Join(work, "book_chapters")}
}

func (f fixture) run(t *testing.T, req Request) (Result, error) {
	t.Helper()
	req.Input = f.input
	req.OutputDir = f.output
	if req.Quality == 0 {
		req.Quality = 2
	}
	return New(f.cfg, nil).Run(context.Background(), req)
}

func TestRunKeepSanitized(t *testing.T) {
	f := newFixture(t, testsupport.ProbeTwoChapters, testsupport.FFmpegOptions{})

	result, err := f.run(t, Request{Keep: true, Sanitize: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"1_Intro.m4b", "2_Ch_1_.m4b", "folder.jpg", "metadata.json", "tags.yaml"}
	if got := testsupport.ListDir(t, f.output); !reflect.DeepEqual(got, want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
	if result.Transcoded {
		t.Fatal("transcode must be skipped with keep")
	}
	if len(result.Chapters) != 2 || result.Chapters[1].SafeTitle != "Ch_1_" {
		t.Fatalf("unexpected chapters %+v", result.Chapters)
	}
	if result.Cover != filepath.Join(f.output, "folder.jpg") {
		t.Fatalf("unexpected cover %q", result.Cover)
	}

	data, err := os.ReadFile(filepath.Join(f.output, "tags.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var tags map[string]any
	if err := yaml.Unmarshal(data, &tags); err != nil {
		t.Fatal(err)
	}
	if tags["Chapter_0"] != "Intro" || tags["Chapter_1"] != "Ch:1!" {
		t.Fatalf("tags.yaml must carry raw titles, got %v", tags)
	}

	for _, call := range f.ffmpeg.Invocations(t) {
		if strings.Contains(strings.Join(call, " "), "-acodec") {
			t.Fatalf("unexpected transcode call with keep: %v", call)
		}
	}
}

func TestRunTranscodesWithPerFileFailure(t *testing.T) {
	f := newFixture(t, testsupport.ProbeTwoChapters, testsupport.FFmpegOptions{FailOutputs: []string{"*/2_*.mp3"}, WritePartial: true})

	result, err := f.run(t, Request{Sanitize: true, Quality: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"1_Intro.mp3", "2_Ch_1_.m4b", "folder.jpg", "metadata.json", "tags.yaml"}
	if got := testsupport.ListDir(t, f.output); !reflect.DeepEqual(got, want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
	if !result.Transcoded || len(result.Transcode.Converted) != 1 || len(result.Transcode.Failed) != 1 {
		t.Fatalf("unexpected transcode result %+v", result.Transcode)
	}

	var sawQuality bool
	for _, call := range f.ffmpeg.Invocations(t) {
		if strings.Contains(strings.Join(call, " "), "-qscale:a 5") {
			sawQuality = true
		}
	}
	if !sawQuality {
		t.Fatal("quality was not forwarded to the encoder")
	}
}

func TestRunSegmentationFailureStopsRun(t *testing.T) {
	f := newFixture(t, testsupport.ProbeTwoChapters, testsupport.FFmpegOptions{FailOutputs: []string{"*/2_*"}})

	result, err := f.run(t, Request{Sanitize: true})
	if !errors.Is(err, services.ErrSegmentation) {
		t.Fatalf("expected segmentation failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "chapter 2") {
		t.Fatalf("error should name the chapter: %v", err)
	}
	if got := testsupport.ListDir(t, f.output); !reflect.DeepEqual(got, []string{"1_Intro.m4b"}) {
		t.Fatalf("output = %v", got)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected one finished segment, got %v", result.Segments)
	}
	calls := f.ffmpeg.Invocations(t)
	if len(calls) != 2 {
		t.Fatalf("expected only the two segment calls, got %d", len(calls))
	}
}

func TestRunWithoutCover(t *testing.T) {
	f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})

	result, err := f.run(t, Request{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Cover != "" {
		t.Fatalf("expected no cover, got %q", result.Cover)
	}
	want := []string{"1_Only.mp3", "metadata.json", "tags.yaml"}
	if got := testsupport.ListDir(t, f.output); !reflect.DeepEqual(got, want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
}

func TestRunReplacesExistingOutputAndReleasesLock(t *testing.T) {
	f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
	testsupport.WriteFile(t, filepath.Join(f.output, "stale.txt"), 4)

	if _, err := f.run(t, Request{Keep: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.output, "stale.txt")); !os.IsNotExist(err) {
		t.Fatal("stale file should have been removed")
	}
	if _, err := os.Stat(f.output + ".lock"); !os.IsNotExist(err) {
		t.Fatal("lock file should be removed after the run")
	}
}

func TestRunCreatesNestedOutputDir(t *testing.T) {
	f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
	f.output = filepath.Join(t.TempDir(), "archive", "books", "book_chapters")

	if _, err := f.run(t, Request{Keep: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"1_Only.m4b", "metadata.json", "tags.yaml"}
	if got := testsupport.ListDir(t, f.output); !reflect.DeepEqual(got, want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
	if got := testsupport.ListDir(t, filepath.Dir(f.output)); !reflect.DeepEqual(got, []string{"book_chapters"}) {
		t.Fatalf("parent = %v, lock file should be gone", got)
	}
}

func TestRunCancelledDuringTranscodeFails(t *testing.T) {
	f := newFixture(t, testsupport.ProbeTwoChapters, testsupport.FFmpegOptions{})
	f.cfg.Transcode.Workers = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(f.cfg, nil)
	p.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		out := args[len(args)-1]
		if strings.HasSuffix(out, ".mp3") {
			cancel()
		}
		return os.WriteFile(out, []byte("ok"), 0o644)
	})

	result, err := p.Run(ctx, Request{Input: f.input, OutputDir: f.output, Quality: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if result.Transcoded {
		t.Fatal("interrupted transcode must not be reported as done")
	}
	if len(result.Transcode.Converted) != 1 || len(result.Transcode.Failed) != 1 {
		t.Fatalf("unexpected transcode result %+v", result.Transcode)
	}
}

func TestRunSetupFailures(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
		f.input = filepath.Join(t.TempDir(), "absent.m4b")
		if _, err := f.run(t, Request{}); !errors.Is(err, services.ErrSetup) {
			t.Fatalf("expected setup failure, got %v", err)
		}
		if _, err := os.Stat(f.output); !os.IsNotExist(err) {
			t.Fatal("output directory must not be created")
		}
	})
	t.Run("missing tool", func(t *testing.T) {
		f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
		f.cfg.Tools.FFprobe = filepath.Join(t.TempDir(), "no-ffprobe")
		_, err := f.run(t, Request{})
		if !errors.Is(err, services.ErrSetup) || !strings.Contains(err.Error(), "FFprobe") {
			t.Fatalf("expected setup failure naming ffprobe, got %v", err)
		}
	})
	t.Run("empty input", func(t *testing.T) {
		f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
		if _, err := New(f.cfg, nil).Run(context.Background(), Request{}); !errors.Is(err, services.ErrSetup) {
			t.Fatalf("expected setup failure, got %v", err)
		}
	})
}

func TestRunProbeAndParseFailures(t *testing.T) {
	f := newFixture(t, testsupport.ProbeNoCover, testsupport.FFmpegOptions{})
	f.cfg.Tools.FFprobe = testsupport.NewFFprobeStub(t, "", 1, "book.m4b: Invalid data found when processing input")
	_, err := f.run(t, Request{})
	if !errors.Is(err, services.ErrProbe) || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected probe failure with diagnostic, got %v", err)
	}

	f.cfg.Tools.FFprobe = testsupport.NewFFprobeStub(t, `{"format": {}}`, 0, "")
	if _, err := f.run(t, Request{}); !errors.Is(err, services.ErrMissingChapters) {
		t.Fatalf("expected missing chapters, got %v", err)
	}
	if calls := f.ffmpeg.Invocations(t); len(calls) != 0 {
		t.Fatalf("ffmpeg must not run, got %v", calls)
	}
}

func TestDefaultOutputDir(t *testing.T) {
	tests := map[string]string{
		"/books/My Book.m4b": "My Book_chapters",
		"Book.Part.One.m4a":  "Book.Part.One_chapters",
		"noext":              "noext_chapters",
	}
	for in, want := range tests {
		if got := DefaultOutputDir(in); got != want {
			t.Fatalf("DefaultOutputDir(%q) = %q, want %q", in, got, want)
		}
	}
}
