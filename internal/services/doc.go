// Package services defines shared utilities consumed by the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and chapter ordinals
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (setup, probe, parse, chapter validation, segmentation, IO).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
