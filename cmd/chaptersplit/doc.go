// Package main hosts the chaptersplit CLI entrypoint and command graph.
//
// The root command splits one chaptered audio file into per-chapter files,
// writes metadata.json, tags.yaml, and folder.jpg beside them, and optionally
// re-encodes every chapter to MP3. The config subcommands scaffold and
// validate the TOML configuration, and check reports the external tools a run
// depends on.
//
// Flags override configuration values; the heavy lifting lives in
// internal/pipeline.
package main
