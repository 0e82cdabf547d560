package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gcbaptista/go-lsh-search/model"
)

// Loader reads text files matched by doublestar patterns (e.g. "docs/**/*.txt").
type Loader struct {
	Exclude     []string // patterns matched against the path and its base name
	MaxFileSize int64    // bytes; 0 = unlimited
}

// LoadFiles is Loader{}.Load.
func LoadFiles(patterns ...string) ([]model.Document, error) {
	return Loader{}.Load(patterns...)
}

// Load expands the patterns, de-duplicates and sorts the paths, and returns one
// document per file with Name set to the path. Ids follow the sorted order.
func (l Loader) Load(patterns ...string) ([]model.Document, error) {
	seen := make(map[string]struct{})
	var paths []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			if l.excluded(path) {
				continue
			}
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)

	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		if l.MaxFileSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if info.Size() > l.MaxFileSize {
				continue
			}
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, model.Document{ID: len(docs), Name: path, Text: string(content)})
	}
	return docs, nil
}

func (l Loader) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range l.Exclude {
		if matched, _ := doublestar.Match(pattern, slashed); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}
