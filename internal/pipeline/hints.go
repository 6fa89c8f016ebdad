package pipeline

import (
	"context"
	"errors"

	"chaptersplit/internal/services"
)

func hintFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "run interrupted; re-run to produce a complete output directory"
	case errors.Is(err, services.ErrSetup):
		return "run `chaptersplit check` and confirm the input path"
	case errors.Is(err, services.ErrProbe):
		return "run ffprobe on the input directly to see why it cannot be read"
	case errors.Is(err, services.ErrMetadataParse):
		return "ffprobe returned unexpected output; check the ffprobe version"
	case errors.Is(err, services.ErrMissingChapters):
		return "the input has no chapter list"
	case errors.Is(err, services.ErrMalformedChapter):
		return "a chapter record lacks start_time or end_time"
	case errors.Is(err, services.ErrSegmentation):
		return "earlier chapters were written; inspect the failing chapter's time range"
	case errors.Is(err, services.ErrIO):
		return "check free space and permissions on the output directory"
	default:
		return "check logs for details"
	}
}
