package services_test

import (
	"context"
	"testing"

	"chaptersplit/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "segment")
	ctx = services.WithChapter(ctx, 3)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "segment" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if ordinal, ok := services.ChapterFromContext(ctx); !ok || ordinal != 3 {
		t.Fatalf("unexpected chapter: %v %v", ordinal, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithChapter(ctx, 0)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.ChapterFromContext(ctx); ok {
		t.Fatal("expected no chapter value")
	}
}
