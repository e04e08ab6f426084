package compiler

import (
	"strings"
)

// segment is a slice of one source file together with the position of its first byte
type segment struct {
	file string
	text string
	line int
	col  int
	raw  bool
}

// position maps an offset inside the segment back to its file position
func (s segment) position(offset int) (int, int) {
	before := s.text[:offset]

	newlines := strings.Count(before, "\n")
	if newlines == 0 {
		return s.line, s.col + offset
	}

	return s.line + newlines, offset - (strings.LastIndexByte(before, '\n') + 1)
}

// errorAt builds a positional error for an offset inside the segment
func (s segment) errorAt(offset int, message string) *Error {
	if s.file == "" {
		return &Error{Message: message}
	}

	line, col := s.position(offset)

	return &Error{Message: message, Filename: s.file, Line: line, Column: col}
}

// position returns the 1-based line and 0-based column of offset in text
func position(text string, offset int) (int, int) {
	return segment{text: text, line: 1}.position(offset)
}

// scan blanks // comments and returns the result plus a copy with /* */ comments blanked too.
// Both keep every newline so offsets and positions stay valid
func scan(src string) (string, string) {
	stripped := []byte(src)
	masked := []byte(src)

	var quote byte

	inURL := false

	for i := 0; i < len(stripped); i++ {
		c := stripped[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
				continue
			}

			if c == quote || c == '\n' {
				quote = 0
			}
		case inURL:
			if c == ')' {
				inURL = false
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(stripped) && stripped[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			stop := len(stripped)

			if end >= 0 {
				stop = i + 2 + end + 2
			}

			blank(masked[i:stop])
			i = stop - 1
		case c == '/' && i+1 < len(stripped) && stripped[i+1] == '/':
			start := i

			for i < len(stripped) && stripped[i] != '\n' {
				i++
			}

			blank(stripped[start:i])
			blank(masked[start:i])
		case (c == 'u' || c == 'U') && strings.HasPrefix(strings.ToLower(src[i:min(i+4, len(src))]), "url("):
			next := strings.TrimLeft(src[i+4:], " \t")
			if next != "" && next[0] != '"' && next[0] != '\'' {
				inURL = true
			}

			i += 3
		}
	}

	return string(stripped), string(masked)
}

// blank replaces everything but newlines with spaces
func blank(b []byte) {
	for i := range b {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
}

// checkBraces reports the first unbalanced brace in masked source
func checkBraces(masked, file string) error {
	var (
		open  []int
		quote byte
	)

	for i := 0; i < len(masked); i++ {
		c := masked[i]

		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote || c == '\n' {
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				line, col := position(masked, i)
				return &Error{Message: "Unexpected '}'", Filename: file, Line: line, Column: col}
			}

			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		line, col := position(masked, open[len(open)-1])
		return &Error{Message: "Missing closing '}'", Filename: file, Line: line, Column: col}
	}

	return nil
}

// depthAt returns the block nesting depth at offset
func depthAt(masked string, offset int) int {
	var quote byte

	depth := 0

	for i := 0; i < offset && i < len(masked); i++ {
		c := masked[i]

		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote || c == '\n' {
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
		}
	}

	return depth
}
