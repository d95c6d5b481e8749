// Package fs enumerates video files for corpus building.
package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"frameset/internal/domain"
)

// videoExts marks the container formats the pipeline accepts.
var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".m4v":  true,
	".webm": true,
}

// Index lists the video files of a corpus directory, non-recursively,
// filtered by include/exclude glob patterns on the file name.
type Index struct {
	includes []string
	excludes []string
}

func NewIndex(includes, excludes []string) *Index {
	if len(includes) == 0 {
		includes = []string{"*"}
	}
	return &Index{
		includes: includes,
		excludes: excludes,
	}
}

// List returns the paths of video files directly inside dir, in
// lexical name order. An empty directory yields an empty slice; a
// missing or unreadable directory is a SourceError.
func (ix *Index) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.SourceError{Path: dir, Err: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !videoExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if !ix.shouldInclude(name) || ix.shouldExclude(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	return paths, nil
}

func (ix *Index) shouldInclude(name string) bool {
	for _, pattern := range ix.includes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (ix *Index) shouldExclude(name string) bool {
	for _, pattern := range ix.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
