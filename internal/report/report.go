package report

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Entry describes one file in the output directory.
type Entry struct {
	Name     string
	Title    string
	Duration time.Duration
	Size     int64
}

// Collect describes every regular file in dir, sorted by name. Title comes
// from the file's embedded tags when readable; duration is measured for files
// with audioExt (the transcode output extension), decoded as MPEG audio.
func Collect(dir, audioExt string) ([]Entry, error) {
	audioExt = "." + strings.TrimPrefix(strings.TrimSpace(audioExt), ".")
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, de.Name())
		entry := Entry{Name: de.Name(), Size: info.Size(), Title: readTitle(path)}
		if audioExt != "." && strings.EqualFold(filepath.Ext(de.Name()), audioExt) {
			if d, err := mp3Duration(path); err == nil {
				entry.Duration = d
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// TotalSize sums the sizes of entries.
func TotalSize(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}

func readTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title())
}

func mp3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total time.Duration
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration()
	}
	return total, nil
}
