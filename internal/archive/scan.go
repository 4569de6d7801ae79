// Package archive bundles the receipts directory into a zip file.
package archive

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Scanner lists the artifacts that go into the archive.
type Scanner interface {
	Scan(rootDir string, includes []string, excludes []string) ([]string, error)
}

// FileScanner walks the receipts directory recursively.
type FileScanner struct{}

// NewScanner creates a new FileScanner.
func NewScanner() *FileScanner {
	return &FileScanner{}
}

// Scan returns the slash-separated paths, relative to rootDir, of the files
// matching any include pattern and no exclude pattern, sorted. Hidden files
// are skipped; they are scratch files of an interrupted receipt.
func (s *FileScanner) Scan(rootDir string, includes []string, excludes []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if matchAny(rel, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || matchAny(rel, excludes) {
			return nil
		}
		if matchAny(rel, includes) {
			files = append(files, rel)
		}
		return nil
	})

	if err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.ErrArchive, "archive", rootDir,
			"failed to scan receipts directory", "check that at least one order produced a receipt", err)
	}

	sort.Strings(files)
	return files, nil
}

func matchAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(rel, p) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated relative path against pattern. "**"
// spans any number of directories; a pattern without a slash also matches
// the base name at any depth.
func matchGlob(rel, pattern string) bool {
	if prefix, suffix, ok := strings.Cut(pattern, "**"); ok {
		prefix = strings.TrimSuffix(prefix, "/")
		suffix = strings.TrimPrefix(suffix, "/")

		if prefix != "" {
			if rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
				return false
			}
			rel = strings.TrimPrefix(strings.TrimPrefix(rel, prefix), "/")
		}
		if suffix == "" {
			return true
		}

		parts := strings.Split(rel, "/")
		for i := range parts {
			if matched, _ := filepath.Match(suffix, strings.Join(parts[i:], "/")); matched {
				return true
			}
		}
		return false
	}

	if !strings.Contains(pattern, "/") {
		matched, _ := filepath.Match(pattern, filepath.Base(rel))
		return matched
	}
	matched, _ := filepath.Match(pattern, rel)
	return matched
}
