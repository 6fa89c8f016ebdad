package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"chaptersplit/internal/services"
)

// Document is the parsed ffprobe output: a generic tree holding the "format",
// "streams", and "chapters" nodes. Numbers are kept as json.Number so the tree
// re-serializes exactly as ffprobe printed it.
type Document struct {
	Tree map[string]any
}

// Args returns the ffprobe arguments requesting format, stream, and chapter
// information as JSON for path.
func Args(path string) []string {
	return []string{"-v", "error", "-hide_banner", "-print_format", "json", "-show_format", "-show_streams", "-show_chapters", "--", path}
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
// A non-zero exit is reported as services.ErrProbe carrying ffprobe's stderr; an
// undecodable payload as services.ErrMetadataParse.
func Inspect(ctx context.Context, binary string, path string) (Document, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Document{}, services.Wrap(services.ErrProbe, "probe", "ffprobe", "empty path", nil)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, Args(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = "no diagnostic output"
		}
		return Document{}, services.Wrap(services.ErrProbe, "probe", "ffprobe", diagnostic, err)
	}

	return Parse(stdout.Bytes())
}

// Parse decodes raw ffprobe JSON into a Document. Exported for testing without
// a real ffprobe binary.
func Parse(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var tree map[string]any
	if err := decoder.Decode(&tree); err != nil {
		return Document{}, services.Wrap(services.ErrMetadataParse, "probe", "parse", "ffprobe output is not a JSON object", err)
	}
	if tree == nil {
		return Document{}, services.Wrap(services.ErrMetadataParse, "probe", "parse", "ffprobe output is null", nil)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Document{}, services.Wrap(services.ErrMetadataParse, "probe", "parse", "trailing data after JSON document", err)
	}
	return Document{Tree: tree}, nil
}

// MarshalIndent renders the full tree pretty-printed with two-space indentation.
func (d Document) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d.Tree); err != nil {
		return nil, fmt.Errorf("encode probe document: %w", err)
	}
	return buf.Bytes(), nil
}

// Chapters returns the "chapters" array. ok is false when the key is absent or
// is not an array.
func (d Document) Chapters() ([]any, bool) {
	chapters, ok := d.Tree["chapters"].([]any)
	return chapters, ok
}

// Streams returns the "streams" array, or nil when absent.
func (d Document) Streams() []any {
	streams, _ := d.Tree["streams"].([]any)
	return streams
}

// FormatTags returns the container-level "format.tags" map, or nil when absent.
func (d Document) FormatTags() map[string]any {
	format, ok := Object(d.Tree["format"])
	if !ok {
		return nil
	}
	tags, _ := Object(format["tags"])
	return tags
}
