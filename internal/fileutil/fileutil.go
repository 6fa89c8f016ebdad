package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListByExtension returns the regular files directly inside dir whose
// extension matches ext (without the dot, case-insensitive), sorted by name.
func ListByExtension(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	want := "." + strings.ToLower(strings.TrimPrefix(ext, "."))
	var matches []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != want {
			continue
		}
		matches = append(matches, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(matches)
	return matches, nil
}

// SwapExtension replaces the extension of path with ext (without the dot).
func SwapExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.TrimPrefix(ext, ".")
}

// ResetDir removes dir if it exists and recreates it empty. existed reports
// whether anything was removed.
func ResetDir(dir string) (existed bool, err error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return true, fmt.Errorf("remove %s: %w", dir, err)
		}
		existed = true
	case !os.IsNotExist(err):
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return existed, fmt.Errorf("create %s: %w", dir, err)
	}
	return existed, nil
}
