package watcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"lesswatch/internal/app/errors"
)

// Matcher checks if watcher-relative paths are excluded by ignore patterns
type Matcher interface {
	Ignored(path string) bool
	IgnoredDir(dirPath string) bool
}

// matcher implements the Matcher interface
type matcher struct {
	ignores []glob.Glob
}

// NewMatcher compiles the ignore patterns
func NewMatcher(ignores []string) (Matcher, error) {
	m := &matcher{
		ignores: make([]glob.Glob, 0, len(ignores)),
	}

	for _, p := range expandPatterns(ignores) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %w", errors.ErrInvalidIgnoreGlob, p, err)
		}

		m.ignores = append(m.ignores, g)
	}

	return m, nil
}

// expandPatterns expands patterns starting with **/ to also match at root level
func expandPatterns(patterns []string) []string {
	expanded := make([]string, 0, len(patterns)*2)

	for _, p := range patterns {
		p = normalizePath(p)
		expanded = append(expanded, p)

		if strings.HasPrefix(p, "**/") {
			expanded = append(expanded, strings.TrimPrefix(p, "**/"))
		}
	}

	return expanded
}

// Ignored returns true if the path matches any ignore pattern
func (m *matcher) Ignored(path string) bool {
	path = normalizePath(path)

	for _, ignore := range m.ignores {
		if ignore.Match(path) {
			return true
		}
	}

	return false
}

// IgnoredDir returns true if everything below the directory is ignored
func (m *matcher) IgnoredDir(dirPath string) bool {
	return m.Ignored(dirPath + "/_probe")
}

// normalizePath converts path separators and removes leading ./
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	return path
}
