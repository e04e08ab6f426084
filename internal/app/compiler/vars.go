package compiler

import (
	"fmt"
	"strings"

	"lesswatch/internal/app/errors"
)

// atRules are directive names that are never treated as variable references
var atRules = map[string]bool{
	"arguments":           true,
	"charset":             true,
	"container":           true,
	"counter-style":       true,
	"document":            true,
	"font-face":           true,
	"font-feature-values": true,
	"import":              true,
	"keyframes":           true,
	"layer":               true,
	"media":               true,
	"namespace":           true,
	"page":                true,
	"plugin":              true,
	"property":            true,
	"rest":                true,
	"supports":            true,
	"viewport":            true,
	"-moz-keyframes":      true,
	"-o-keyframes":        true,
	"-webkit-keyframes":   true,
}

type definition struct {
	value string
	seg   segment
	at    int
}

// scope holds variable definitions, the last definition of a name wins and values are evaluated lazily
type scope struct {
	defs      map[string]definition
	modify    map[string]definition
	resolving map[string]bool
}

func newScope(global, modify map[string]string) *scope {
	s := &scope{
		defs:      make(map[string]definition),
		modify:    make(map[string]definition),
		resolving: make(map[string]bool),
	}

	for name, value := range global {
		s.defs[strings.TrimPrefix(name, "@")] = definition{value: value}
	}

	for name, value := range modify {
		s.modify[strings.TrimPrefix(name, "@")] = definition{value: value}
	}

	return s
}

func (s *scope) define(name string, def definition) {
	s.defs[name] = def
}

func (s *scope) defined(name string) bool {
	if _, ok := s.modify[name]; ok {
		return true
	}

	_, ok := s.defs[name]

	return ok
}

// lookup evaluates a variable, detecting definitions that refer to themselves
func (s *scope) lookup(name string) (string, error) {
	def, ok := s.modify[name]
	if !ok {
		def, ok = s.defs[name]
	}

	if !ok {
		return "", fmt.Errorf("variable @%s is undefined", name)
	}

	if s.resolving[name] {
		return "", fmt.Errorf("recursive variable definition for @%s", name)
	}

	s.resolving[name] = true
	defer delete(s.resolving, name)

	value, at, err := s.interpolate(def.value)
	if err != nil {
		var positional *Error
		if !errors.As(err, &positional) && def.seg.file != "" {
			return "", def.seg.errorAt(def.at+at, err.Error())
		}

		return "", err
	}

	return strings.TrimSpace(value), nil
}

// interpolate substitutes @name and @{name} references. Inside strings only the braced form is
// replaced. Comments are copied untouched. On failure it returns the offset of the reference
func (s *scope) interpolate(text string) (string, int, error) {
	var (
		b     strings.Builder
		quote byte
	)

	for i := 0; i < len(text); {
		c := text[i]

		if quote == 0 && c == '/' && i+1 < len(text) && text[i+1] == '*' {
			end := len(text)
			if idx := strings.Index(text[i+2:], "*/"); idx >= 0 {
				end = i + 2 + idx + 2
			}

			b.WriteString(text[i:end])
			i = end

			continue
		}

		if quote != 0 {
			if c == '\\' && i+1 < len(text) {
				b.WriteString(text[i : i+2])
				i += 2

				continue
			}

			if c == quote {
				quote = 0
			}
		} else if c == '"' || c == '\'' {
			quote = c
		}

		if c == '@' {
			if name, n, ok := braced(text[i:]); ok {
				value, err := s.lookup(name)
				if err != nil {
					return "", i, err
				}

				b.WriteString(unquote(value))
				i += n

				continue
			}

			if quote == 0 {
				name := ident(text[i+1:])
				if name != "" && (!atRules[name] || s.defined(name)) {
					value, err := s.lookup(name)
					if err != nil {
						return "", i, err
					}

					b.WriteString(value)
					i += 1 + len(name)

					continue
				}
			}
		}

		b.WriteByte(c)
		i++
	}

	return b.String(), 0, nil
}

// braced matches @{name} at the start of text
func braced(text string) (string, int, bool) {
	if !strings.HasPrefix(text, "@{") {
		return "", 0, false
	}

	end := strings.IndexByte(text, '}')
	if end < 0 {
		return "", 0, false
	}

	name := text[2:end]
	if name == "" || ident(name) != name {
		return "", 0, false
	}

	return name, end + 1, true
}

// ident returns the identifier at the start of text
func ident(text string) string {
	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			continue
		}

		return text[:i]
	}

	return text
}

// unquote strips one pair of surrounding quotes and an optional escape prefix
func unquote(value string) string {
	value = strings.TrimPrefix(value, "~")

	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		return value[1 : len(value)-1]
	}

	return value
}
