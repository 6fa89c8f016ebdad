package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSetup            = errors.New("setup failure")
	ErrProbe            = errors.New("probe failure")
	ErrMetadataParse    = errors.New("metadata parse failure")
	ErrMissingChapters  = errors.New("missing chapters")
	ErrMalformedChapter = errors.New("malformed chapter")
	ErrSegmentation     = errors.New("segmentation failure")
	ErrIO               = errors.New("io failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
