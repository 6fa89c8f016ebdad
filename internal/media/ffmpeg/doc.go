// Package ffmpeg builds ffmpeg argument lists for chapter extraction, cover
// extraction, and audio transcoding, and defines the injectable Runner used
// to execute them.
//
// The output path is always the final argument.
package ffmpeg
