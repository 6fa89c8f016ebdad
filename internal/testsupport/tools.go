package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FFmpegStub is a fake ffmpeg that writes a small file to its last argument
// (the output path) and records every invocation.
type FFmpegStub struct {
	Path    string
	LogPath string
}

// FFmpegOptions tunes the fake ffmpeg.
type FFmpegOptions struct {
	// FailOutputs are shell glob patterns matched against the output path;
	// a match exits 1 with a diagnostic on stderr.
	FailOutputs []string
	// WritePartial writes the output before failing, like an encoder that dies
	// halfway through.
	WritePartial bool
}

// NewFFmpegStub installs a fake ffmpeg in a fresh temp directory.
func NewFFmpegStub(t testing.TB, opts FFmpegOptions) FFmpegStub {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "ffmpeg.log")

	var cases strings.Builder
	for _, pattern := range opts.FailOutputs {
		fmt.Fprintf(&cases, "  %s)\n", pattern)
		if opts.WritePartial {
			cases.WriteString("    printf 'partial' > \"$out\"\n")
		}
		cases.WriteString("    echo \"simulated failure for $out\" >&2\n    exit 1\n    ;;\n")
	}

	body := fmt.Sprintf(`for last; do :; done
out="$last"
( IFS='|'; printf '%%s\n' "$*" ) >> %q
case "$out" in
%s  *)
    ;;
esac
printf 'encoded' > "$out"
exit 0
`, logPath, cases.String())

	return FFmpegStub{Path: WriteScript(t, dir, "ffmpeg", body), LogPath: logPath}
}

// Invocations returns the recorded argument lists, one per call, in call order.
func (s FFmpegStub) Invocations(t testing.TB) [][]string {
	t.Helper()
	data, err := os.ReadFile(s.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read ffmpeg log: %v", err)
	}
	var calls [][]string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		calls = append(calls, strings.Split(line, "|"))
	}
	return calls
}

// NewFFprobeStub installs a fake ffprobe that prints payload to stdout. A
// non-zero exitCode prints diagnostic to stderr instead.
func NewFFprobeStub(t testing.TB, payload string, exitCode int, diagnostic string) string {
	t.Helper()
	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(payloadPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write probe payload: %v", err)
	}
	body := fmt.Sprintf("if [ %d -ne 0 ]; then\n  echo %q >&2\n  exit %d\nfi\ncat %q\n", exitCode, diagnostic, exitCode, payloadPath)
	return WriteScript(t, dir, "ffprobe", body)
}
