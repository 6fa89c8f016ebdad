// Package pipeline runs a chapter split end to end: preflight checks, output
// directory preparation, probing, chapter extraction, segmentation, metadata
// files, cover art, and the optional MP3 transcode.
//
// Stages run sequentially. The first fatal error stops the run and leaves
// whatever was already written in place.
package pipeline
