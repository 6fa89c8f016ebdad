package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"chaptersplit/internal/media/ffprobe"
	"chaptersplit/internal/services"
)

const (
	// ProbeFileName holds the verbatim ffprobe document.
	ProbeFileName = "metadata.json"
	// TagsFileName holds the merged tag document.
	TagsFileName = "tags.yaml"
	// UntitledChapter names chapters without a title tag in the tag document.
	UntitledChapter = "Untitled"
)

// TagDocument maps tag keys to scalar values.
type TagDocument map[string]any

// Paths lists the files written by Synthesize.
type Paths struct {
	ProbeJSON string
	Tags      string
}

// Synthesize writes metadata.json and tags.yaml into outputDir.
func Synthesize(doc ffprobe.Document, outputDir string) (Paths, error) {
	paths := Paths{
		ProbeJSON: filepath.Join(outputDir, ProbeFileName),
		Tags:      filepath.Join(outputDir, TagsFileName),
	}
	if err := WriteProbeJSON(doc, paths.ProbeJSON); err != nil {
		return Paths{}, err
	}
	if err := WriteTags(BuildTags(doc), paths.Tags); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

// WriteProbeJSON writes the full probe document, pretty-printed, to path.
func WriteProbeJSON(doc ffprobe.Document, path string) error {
	data, err := doc.MarshalIndent()
	if err != nil {
		return services.Wrap(services.ErrIO, "metadata", "encode json", "", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "metadata", "write json", path, err)
	}
	return nil
}

// BuildTags overlays Chapter_<id> keys on the container tags. Chapter keys win
// on collision; records without an integer id are skipped.
func BuildTags(doc ffprobe.Document) TagDocument {
	tags := make(TagDocument)
	for key, value := range doc.FormatTags() {
		tags[key] = scalar(value)
	}

	records, _ := doc.Chapters()
	for _, record := range records {
		chapter, ok := ffprobe.Object(record)
		if !ok {
			continue
		}
		id, ok := ffprobe.Int(chapter["id"])
		if !ok {
			continue
		}
		title := UntitledChapter
		if raw, ok := ffprobe.Path(chapter, "tags", "title"); ok {
			if s, ok := ffprobe.String(raw); ok {
				title = s
			}
		}
		tags["Chapter_"+strconv.FormatInt(id, 10)] = title
	}
	return tags
}

// WriteTags serializes tags as YAML to path.
func WriteTags(tags TagDocument, path string) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]any(tags)); err != nil {
		return services.Wrap(services.ErrIO, "metadata", "encode yaml", "", err)
	}
	if err := encoder.Close(); err != nil {
		return services.Wrap(services.ErrIO, "metadata", "encode yaml", "", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "metadata", "write yaml", path, err)
	}
	return nil
}

// scalar converts json.Number tag values into int64 or float64 so YAML
// renders them as numbers rather than quoted strings.
func scalar(value any) any {
	number, ok := value.(json.Number)
	if !ok {
		return value
	}
	if i, err := number.Int64(); err == nil {
		return i
	}
	if f, err := number.Float64(); err == nil {
		return f
	}
	return number.String()
}
