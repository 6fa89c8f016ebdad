package cover

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chaptersplit/internal/media/ffprobe"
	"chaptersplit/internal/testsupport"
)

func parse(t *testing.T, payload string) ffprobe.Document {
	t.Helper()
	doc, err := ffprobe.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestFindAttachedPicture(t *testing.T) {
	if idx, ok := FindAttachedPicture(parse(t, testsupport.ProbeTwoChapters)); !ok || idx != 1 {
		t.Fatalf("expected stream 1, got %d %v", idx, ok)
	}
	if _, ok := FindAttachedPicture(parse(t, testsupport.ProbeNoCover)); ok {
		t.Fatal("expected no cover")
	}
	first := parse(t, `{"streams": [
		{"index": 0, "disposition": {"attached_pic": 0}},
		{"index": 2, "disposition": {"attached_pic": 1}},
		{"index": 3, "disposition": {"attached_pic": 1}}
	]}`)
	if idx, ok := FindAttachedPicture(first); !ok || idx != 2 {
		t.Fatalf("expected first flagged stream 2, got %d %v", idx, ok)
	}
}

func TestExtractWritesCover(t *testing.T) {
	stub := testsupport.NewFFmpegStub(t, testsupport.FFmpegOptions{})
	dir := t.TempDir()

	path := NewExtractor(stub.Path, nil).Extract(context.Background(), parse(t, testsupport.ProbeTwoChapters), "/books/book.m4b", dir)
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected cover path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cover not written: %v", err)
	}
	calls := stub.Invocations(t)
	if len(calls) != 1 || !strings.Contains(strings.Join(calls[0], " "), "-map 0:1 -c copy") {
		t.Fatalf("unexpected ffmpeg calls %v", calls)
	}
}

func TestExtractWithoutCoverSkipsFFmpeg(t *testing.T) {
	var logs bytes.Buffer
	ext := NewExtractor("ffmpeg", slog.New(slog.NewTextHandler(&logs, nil)))
	ext.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg must not run without a cover stream")
		return nil
	})
	if path := ext.Extract(context.Background(), parse(t, testsupport.ProbeNoCover), "in.m4b", t.TempDir()); path != "" {
		t.Fatalf("expected no cover, got %q", path)
	}
	if !strings.Contains(logs.String(), "level=INFO") || !strings.Contains(logs.String(), "no embedded cover found") {
		t.Fatalf("expected info notice, got %s", logs.String())
	}
}

func TestExtractFailureIsWarning(t *testing.T) {
	var logs bytes.Buffer
	ext := NewExtractor("ffmpeg", slog.New(slog.NewTextHandler(&logs, nil)))
	ext.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	if path := ext.Extract(context.Background(), parse(t, testsupport.ProbeTwoChapters), "in.m4b", t.TempDir()); path != "" {
		t.Fatalf("expected no cover path on failure, got %q", path)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "cover_extract_failed") {
		t.Fatalf("expected warning, got %s", logs.String())
	}
}
