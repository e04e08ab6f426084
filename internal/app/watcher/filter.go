package watcher

import (
	"slices"
	"strings"
)

// BaseExtensions are the file suffixes that always trigger a rebuild
var BaseExtensions = []string{".less", ".css", ".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// ExtensionFilter decides whether a changed path is relevant to the build
type ExtensionFilter struct {
	extensions []string
}

// NewExtensionFilter merges user-supplied extensions into the base set
func NewExtensionFilter(extra []string) *ExtensionFilter {
	extensions := slices.Clone(BaseExtensions)

	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		if !slices.Contains(extensions, ext) {
			extensions = append(extensions, ext)
		}
	}

	return &ExtensionFilter{extensions: extensions}
}

// Match reports whether the lowercased path ends with a configured extension
func (f *ExtensionFilter) Match(path string) bool {
	path = strings.ToLower(path)

	for _, ext := range f.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// Extensions returns the effective extension list
func (f *ExtensionFilter) Extensions() []string {
	return slices.Clone(f.extensions)
}
