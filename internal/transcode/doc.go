// Package transcode re-encodes chapter segments to MP3 with a bounded pool
// of concurrent ffmpeg processes.
//
// Each segment is its own task: a failed encode is logged as a warning, its
// partial output is removed, and the original segment is kept. The original
// is deleted only after the new file exists and decodes.
package transcode
