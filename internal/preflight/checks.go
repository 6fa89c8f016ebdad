package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"chaptersplit/internal/config"
	"chaptersplit/internal/deps"
)

// Requirements lists the external binaries every run needs.
func Requirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for chapter and stream inspection",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for splitting, cover extraction, and transcoding",
		},
	}
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
// Both the run path and the CLI check command use this so the list stays in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}

// CheckInputFile verifies the input exists, is a regular file, and is readable.
func CheckInputFile(path string) Result {
	const name = "Input file"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckOutputParent verifies that the output directory can be created or
// replaced. Missing parents are created by the run, so the check applies to
// the nearest ancestor that already exists.
func CheckOutputParent(outputDir string) Result {
	const name = "Output location"
	parent, err := existingAncestor(filepath.Dir(filepath.Clean(outputDir)))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", parent, err)}
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", parent)}
}

// existingAncestor returns dir or its closest existing ancestor. It fails when
// that ancestor is not a directory.
func existingAncestor(dir string) (string, error) {
	for {
		info, err := os.Stat(dir)
		switch {
		case err == nil:
			if !info.IsDir() {
				return dir, errors.New("is not a directory")
			}
			return dir, nil
		case !os.IsNotExist(err):
			return dir, fmt.Errorf("stat: %w", err)
		}
		up := filepath.Dir(dir)
		if up == dir {
			return dir, errors.New("does not exist")
		}
		dir = up
	}
}
