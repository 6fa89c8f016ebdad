package transcode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"chaptersplit/internal/testsupport"
)

func acceptAll(string) error { return nil }

func writeSegments(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), 64)
	}
}

func TestRunConvertsAndRemovesOriginals(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_Intro.m4b", "2_Ch_1_.m4b", "3_End.m4b")
	testsupport.WriteFile(t, filepath.Join(dir, "metadata.json"), 8)
	stub := testsupport.NewFFmpegStub(t, testsupport.FFmpegOptions{})

	tc := NewTranscoder(stub.Path, nil)
	tc.WithVerifier(acceptAll)
	result, err := tc.Run(context.Background(), dir, Options{SourceExt: "m4b", TargetExt: "mp3", Codec: "libmp3lame", Quality: 4, Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 0 || len(result.Converted) != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	want := []string{"1_Intro.mp3", "2_Ch_1_.mp3", "3_End.mp3", "metadata.json"}
	if got := testsupport.ListDir(t, dir); !reflect.DeepEqual(got, want) {
		t.Fatalf("dir = %v, want %v", got, want)
	}
	for _, call := range stub.Invocations(t) {
		joined := strings.Join(call, " ")
		if !strings.Contains(joined, "-acodec libmp3lame -qscale:a 4") {
			t.Fatalf("unexpected encoder args %s", joined)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_Intro.m4b", "2_Ch_1_.m4b")
	stub := testsupport.NewFFmpegStub(t, testsupport.FFmpegOptions{FailOutputs: []string{"*/2_*"}, WritePartial: true})

	var logs bytes.Buffer
	tc := NewTranscoder(stub.Path, slog.New(slog.NewTextHandler(&logs, nil)))
	tc.WithVerifier(acceptAll)
	result, err := tc.Run(context.Background(), dir, Options{SourceExt: "m4b", TargetExt: "mp3", Codec: "libmp3lame", Quality: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"1_Intro.mp3", "2_Ch_1_.m4b"}
	if got := testsupport.ListDir(t, dir); !reflect.DeepEqual(got, want) {
		t.Fatalf("dir = %v, want %v", got, want)
	}
	if len(result.Converted) != 1 || filepath.Base(result.Converted[0]) != "1_Intro.mp3" {
		t.Fatalf("unexpected converted list %v", result.Converted)
	}
	if len(result.Failed) != 1 || filepath.Base(result.Failed[0].Source) != "2_Ch_1_.m4b" {
		t.Fatalf("unexpected failed list %v", result.Failed)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "2_Ch_1_.m4b") {
		t.Fatalf("expected per-file warning, got %s", logs.String())
	}
}

func TestRunKeepsOriginalWhenVerificationFails(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_Intro.m4b")
	stub := testsupport.NewFFmpegStub(t, testsupport.FFmpegOptions{})

	// Default verifier: the stub writes plain text, which is not MP3.
	result, err := NewTranscoder(stub.Path, nil).Run(context.Background(), dir, Options{SourceExt: "m4b", TargetExt: "mp3", Codec: "libmp3lame", Quality: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected verification failure, got %+v", result)
	}
	if got := testsupport.ListDir(t, dir); !reflect.DeepEqual(got, []string{"1_Intro.m4b"}) {
		t.Fatalf("dir = %v", got)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_a.m4b", "2_b.m4b", "3_c.m4b", "4_d.m4b", "5_e.m4b")

	var active, peak atomic.Int32
	tc := NewTranscoder("ffmpeg", nil)
	tc.WithVerifier(acceptAll)
	tc.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return os.WriteFile(args[len(args)-1], []byte("ok"), 0o644)
	})
	result, err := tc.Run(context.Background(), dir, Options{SourceExt: "m4b", TargetExt: "mp3", Codec: "libmp3lame", Quality: 2, Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Converted) != 5 {
		t.Fatalf("expected 5 conversions, got %+v", result)
	}
	if peak.Load() > 2 {
		t.Fatalf("concurrency exceeded limit: %d", peak.Load())
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_a.m4b", "2_b.m4b", "3_c.m4b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	tc := NewTranscoder("ffmpeg", nil)
	tc.WithVerifier(acceptAll)
	tc.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		calls.Add(1)
		cancel()
		return os.WriteFile(args[len(args)-1], []byte("ok"), 0o644)
	})

	result, err := tc.Run(ctx, dir, Options{SourceExt: "m4b", TargetExt: "mp3", Codec: "libmp3lame", Quality: 2, Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected no encoder calls after cancel, got %d", n)
	}
	if len(result.Converted) != 1 || len(result.Failed) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	want := []string{"1_a.mp3", "2_b.m4b", "3_c.m4b"}
	if got := testsupport.ListDir(t, dir); !reflect.DeepEqual(got, want) {
		t.Fatalf("dir = %v, want %v", got, want)
	}
}

func TestRunPreCancelledStartsNothing(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, "1_a.m4b", "2_b.m4b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tc := NewTranscoder("ffmpeg", nil)
	tc.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Error("no encoder call expected")
		return nil
	})
	result, err := tc.Run(ctx, dir, Options{SourceExt: "m4b", TargetExt: "mp3", Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if len(result.Failed) != 2 || len(result.Converted) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	tc := NewTranscoder("ffmpeg", nil)
	tc.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("no encoder call expected")
		return nil
	})
	result, err := tc.Run(context.Background(), t.TempDir(), Options{SourceExt: "m4b", TargetExt: "mp3"})
	if err != nil || len(result.Converted)+len(result.Failed) != 0 {
		t.Fatalf("unexpected result %+v err=%v", result, err)
	}
	if _, err := tc.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{SourceExt: "m4b"}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestVerifyMP3RejectsNonAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.mp3")
	if err := os.WriteFile(path, []byte("encoded"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := VerifyMP3(path); err == nil {
		t.Fatal("expected plain text to fail verification")
	}
	if err := VerifyMP3(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected missing file to fail verification")
	}
}
