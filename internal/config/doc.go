// Package config loads, normalizes, and validates chaptersplit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from an explicit path, the user config
// directory, or ./chaptersplit.toml. Command-line flags are layered on top by
// the CLI after Load returns.
package config
