// Package chapters turns the chapter records of an ffprobe document into
// ordered, typed descriptors and derives their segment file names.
package chapters
