// Package ffprobe wraps ffprobe's JSON output as a generic document.
//
// Key types:
//   - Document: the parsed tree (format, streams, chapters)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns the parsed Document
//   - Parse: decodes captured ffprobe JSON
//
// The tree is intentionally untyped: stage packages project the parts they
// need (chapters, tags, cover stream) into typed values at their boundary.
package ffprobe
