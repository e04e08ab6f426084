package compiler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const maxImportDepth = 32

var (
	importPattern = regexp.MustCompile(`@import\s*(?:\(([^)]*)\)\s*)?(?:url\(\s*)?["']([^"']*)["']\s*\)?\s*([^;{}]*);`)
	declPattern   = regexp.MustCompile(`@([\w-]+)\s*:\s*([^;{}]*);`)
)

// importSpec is one parsed @import statement
type importSpec struct {
	statement string
	path      string
	media     string
	reference bool
	inline    bool
	less      bool
	css       bool
	multiple  bool
	optional  bool
}

func parseImport(statement, options, path, media string) importSpec {
	spec := importSpec{
		statement: statement,
		path:      path,
		media:     strings.TrimSpace(media),
	}

	for _, opt := range strings.Split(options, ",") {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "reference":
			spec.reference = true
		case "inline":
			spec.inline = true
		case "less":
			spec.less = true
		case "css":
			spec.css = true
		case "multiple":
			spec.multiple = true
		case "optional":
			spec.optional = true
		}
	}

	return spec
}

// verbatim reports whether the import is left in the output instead of being inlined
func (s importSpec) verbatim() bool {
	if isRemote(s.path) || s.css {
		return true
	}

	return strings.EqualFold(filepath.Ext(s.path), ".css") && !s.less && !s.inline
}

// loader inlines imports and collects variable declarations into ordered segments
type loader struct {
	fs       afero.Fs
	paths    []string
	vars     *scope
	seen     map[string]bool
	imports  []string
	segments []segment
}

type match struct {
	start, end int
	sub        []int
	decl       bool
}

// load processes one file: declarations are recorded and blanked, imports are expanded in place
func (l *loader) load(file, src string, depth int, reference bool) error {
	stripped, masked := scan(src)

	if err := checkBraces(masked, file); err != nil {
		return err
	}

	matches := make([]match, 0)

	for _, m := range importPattern.FindAllStringSubmatchIndex(masked, -1) {
		matches = append(matches, match{start: m[0], end: m[1], sub: m})
	}

	for _, m := range declPattern.FindAllStringSubmatchIndex(masked, -1) {
		matches = append(matches, match{start: m[0], end: m[1], sub: m, decl: true})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	text := []byte(stripped)
	whole := segment{file: file, text: stripped, line: 1}
	cursor, last := 0, 0

	for _, m := range matches {
		if m.start < last {
			continue
		}

		last = m.end

		if m.decl {
			l.vars.define(masked[m.sub[2]:m.sub[3]], definition{
				value: stripped[m.sub[4]:m.sub[5]],
				seg:   whole,
				at:    m.sub[4],
			})

			blank(text[m.start:m.end])

			continue
		}

		if depthAt(masked, m.start) > 0 {
			return whole.errorAt(m.start, "@import inside a block is not supported")
		}

		l.emit(whole, string(text[cursor:m.start]), cursor, reference)
		cursor = m.end

		spec := parseImport(stripped[m.start:m.end], group(stripped, m.sub, 1), group(stripped, m.sub, 2), group(stripped, m.sub, 3))
		if err := l.include(whole, m.start, spec, depth, reference); err != nil {
			return err
		}
	}

	l.emit(whole, string(text[cursor:]), cursor, reference)

	return nil
}

// include resolves one import and appends its content
func (l *loader) include(from segment, at int, spec importSpec, depth int, reference bool) error {
	if depth >= maxImportDepth {
		return from.errorAt(at, "maximum import depth exceeded")
	}

	if strings.Contains(spec.path, "@{") {
		path, _, err := l.vars.interpolate(spec.path)
		if err != nil {
			return from.errorAt(at, err.Error())
		}

		spec.path = path
	}

	if spec.verbatim() {
		if !reference {
			line, col := from.position(at)
			l.segments = append(l.segments, segment{file: from.file, text: spec.statement + "\n", line: line, col: col})
		}

		return nil
	}

	resolved, err := l.resolve(from.file, spec.path)
	if err != nil {
		if spec.optional {
			return nil
		}

		return from.errorAt(at, fmt.Sprintf("'%s' wasn't found", spec.path))
	}

	if l.seen[resolved] && !spec.multiple {
		return nil
	}

	if !l.seen[resolved] {
		l.imports = append(l.imports, resolved)
	}

	l.seen[resolved] = true

	content, err := afero.ReadFile(l.fs, resolved)
	if err != nil {
		return from.errorAt(at, err.Error())
	}

	reference = reference || spec.reference

	if spec.media != "" && !reference {
		l.segments = append(l.segments, segment{text: "@media " + spec.media + " {\n"})
		defer func() {
			l.segments = append(l.segments, segment{text: "}\n"})
		}()
	}

	if spec.inline {
		if !reference {
			l.segments = append(l.segments, segment{file: resolved, text: string(content) + "\n", line: 1, raw: true})
		}

		return nil
	}

	return l.load(resolved, string(content), depth+1, reference)
}

// resolve looks the import up next to the importing file, then in the include paths
func (l *loader) resolve(from, target string) (string, error) {
	if filepath.Ext(target) == "" {
		target += ".less"
	}

	if filepath.IsAbs(target) {
		return target, l.exists(target)
	}

	dirs := append([]string{filepath.Dir(from)}, l.paths...)

	var err error

	for _, dir := range dirs {
		candidate := filepath.Join(dir, target)

		if err = l.exists(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}

	return "", err
}

func (l *loader) exists(path string) error {
	info, err := l.fs.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	return nil
}

// emit appends a slice of the file starting at offset, skipping referenced and blank content
func (l *loader) emit(whole segment, text string, offset int, reference bool) {
	if reference || strings.TrimSpace(text) == "" {
		return
	}

	line, col := whole.position(offset)

	l.segments = append(l.segments, segment{file: whole.file, text: text, line: line, col: col})
}

func group(src string, sub []int, n int) string {
	if sub[2*n] < 0 {
		return ""
	}

	return src[sub[2*n]:sub[2*n+1]]
}

func isRemote(path string) bool {
	lower := strings.ToLower(path)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//")
}
