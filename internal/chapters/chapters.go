package chapters

import (
	"fmt"
	"strconv"

	"chaptersplit/internal/media/ffprobe"
	"chaptersplit/internal/services"
	"chaptersplit/internal/textutil"
)

// DefaultTitle names chapters whose record carries no title tag.
const DefaultTitle = "Chapter"

// Descriptor is the validated projection of one ffprobe chapter record.
type Descriptor struct {
	Ordinal   int
	Start     string
	End       string
	Title     string
	SafeTitle string
}

// Options selects the title policy.
type Options struct {
	Sanitize       bool
	FoldDiacritics bool
}

// FileName returns "<ordinal>_<safe_title>.<ext>".
func (d Descriptor) FileName(ext string) string {
	return strconv.Itoa(d.Ordinal) + "_" + d.SafeTitle + "." + ext
}

// Extract projects the chapters array of doc into descriptors with ordinals
// 1..N in source order.
func Extract(doc ffprobe.Document, opts Options) ([]Descriptor, error) {
	records, ok := doc.Chapters()
	if !ok {
		return nil, services.Wrap(services.ErrMissingChapters, "chapters", "extract", "probe document has no chapters array", nil)
	}

	descriptors := make([]Descriptor, 0, len(records))
	for i, record := range records {
		ordinal := i + 1
		chapter, ok := ffprobe.Object(record)
		if !ok {
			return nil, malformed(ordinal, "record is not an object")
		}
		start, ok := ffprobe.String(chapter["start_time"])
		if !ok {
			return nil, malformed(ordinal, "missing start_time")
		}
		end, ok := ffprobe.String(chapter["end_time"])
		if !ok {
			return nil, malformed(ordinal, "missing end_time")
		}
		title := DefaultTitle
		if raw, ok := ffprobe.Path(chapter, "tags", "title"); ok {
			if s, ok := ffprobe.String(raw); ok {
				title = s
			}
		}
		descriptors = append(descriptors, Descriptor{
			Ordinal:   ordinal,
			Start:     start,
			End:       end,
			Title:     title,
			SafeTitle: safeTitle(title, opts),
		})
	}
	return descriptors, nil
}

func safeTitle(title string, opts Options) string {
	if !opts.Sanitize {
		return title
	}
	if opts.FoldDiacritics {
		title = textutil.FoldDiacritics(title)
	}
	return textutil.SanitizeTitle(title)
}

func malformed(ordinal int, reason string) error {
	return services.Wrap(services.ErrMalformedChapter, "chapters", "extract", fmt.Sprintf("chapter %d: %s", ordinal, reason), nil)
}
