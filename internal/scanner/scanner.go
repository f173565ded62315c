package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Scanner discovers files under a root by glob.
type Scanner interface {
	Scan(root string, include []string, exclude []string) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct {
	Recursive bool
}

// NewScanner creates a new FileScanner.
func NewScanner(recursive bool) *FileScanner {
	return &FileScanner{Recursive: recursive}
}

// Scan returns the sorted files under root that match an include pattern and
// no exclude pattern. Patterns are matched against the base name and against
// the slash-separated path relative to root; ** spans directories.
// A root that is itself a file is returned when it matches.
func (s *FileScanner) Scan(root string, include []string, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewError("scan", root, 0, "failed to scan", err)
	}
	if !info.IsDir() {
		if matchAny(filepath.Base(root), include) && !matchAny(filepath.Base(root), exclude) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !s.Recursive || matchAny(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(rel, exclude) {
			return nil
		}
		if matchAny(rel, include) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewError("scan", root, 0, "failed to scan directory", err)
	}

	sort.Strings(files)
	return files, nil
}

// ScanAll scans every root and returns the union of the results without duplicates,
// in root order.
func ScanAll(s Scanner, roots []string, include []string, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var all []string
	for _, root := range roots {
		files, err := s.Scan(root, include, exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if abs, err := filepath.Abs(f); err == nil && !seen[abs] {
				seen[abs] = true
				all = append(all, f)
			}
		}
	}
	return all, nil
}

func matchAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(rel, p) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated relative path against pattern.
// "dir/**" matches everything below dir; "**/x.yaml" matches x.yaml at any depth.
func matchGlob(rel, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
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
			if ok, _ := filepath.Match(suffix, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
		return false
	}

	if ok, _ := filepath.Match(pattern, rel); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, filepath.Base(rel))
	return ok
}
