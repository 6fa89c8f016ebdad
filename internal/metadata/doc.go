// Package metadata persists the probe document and a merged tag file next to
// the chapter segments.
//
// metadata.json is the full ffprobe tree, pretty-printed. tags.yaml starts
// from the container tags and overlays one Chapter_<id> key per chapter
// record that carries an integer id.
package metadata
