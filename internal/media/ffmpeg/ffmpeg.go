package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external command and reports a non-zero exit as an error.
type Runner func(ctx context.Context, name string, args ...string) error

// DefaultRunner runs the command and folds its combined output into the
// returned error so callers can surface ffmpeg's diagnostic.
func DefaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// SegmentArgs copies the [start, end) range of input into output without
// re-encoding.
func SegmentArgs(input, start, end, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-ss", start,
		"-to", end,
		"-c", "copy",
		output,
	}
}

// CoverArgs copies stream index of input into output.
func CoverArgs(input string, index int, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-map", "0:" + strconv.Itoa(index),
		"-c", "copy",
		output,
	}
}

// TranscodeArgs re-encodes input with codec at the given VBR quality.
func TranscodeArgs(input, codec string, quality int, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-acodec", codec,
		"-qscale:a", strconv.Itoa(quality),
		output,
	}
}
