// Package scanner discovers the files to lint below a directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
	ignore     []string
}

func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Ignore skips files and directories whose base name matches one of the
// filepath.Match patterns, or whose path equals or lies below one of them.
func (s *Scanner) Ignore(patterns ...string) *Scanner {
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			s.ignore = append(s.ignore, filepath.Clean(p))
		}
	}
	return s
}

// Scan walks the root directory and returns the matching files sorted by path.
// Hidden directories such as .git are not entered.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && (isHidden(d.Name()) || s.isIgnored(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.isTargetFile(path) || s.isIgnored(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path: path,
			Size: info.Size(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, err
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

func (s *Scanner) isIgnored(path string) bool {
	cleaned := filepath.Clean(path)
	base := filepath.Base(cleaned)
	for _, pattern := range s.ignore {
		if cleaned == pattern || strings.HasPrefix(cleaned, pattern+string(filepath.Separator)) {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
