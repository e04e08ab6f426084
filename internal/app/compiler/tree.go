package compiler

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	ruleNode nodeKind = iota
	atNode
	declNode
	commentNode
)

// node is a parsed statement: a ruleset, an at-rule with a block, a declaration or a comment
type node struct {
	kind     nodeKind
	prelude  string
	children []*node
}

// groupingRules propagate the surrounding selectors into their block and bubble to the top level
var groupingRules = map[string]bool{
	"@container": true,
	"@document":  true,
	"@layer":     true,
	"@media":     true,
	"@supports":  true,
}

type parser struct {
	src string
	pos int
}

func parse(src string) ([]*node, error) {
	p := &parser{src: src}
	return p.block(true)
}

func (p *parser) block(top bool) ([]*node, error) {
	var (
		nodes []*node
		buf   strings.Builder
	)

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			nodes = append(nodes, &node{kind: declNode, prelude: s})
		}

		buf.Reset()
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch {
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			comment := p.comment()

			if strings.TrimSpace(buf.String()) == "" {
				buf.Reset()
				nodes = append(nodes, &node{kind: commentNode, prelude: comment})
			} else {
				buf.WriteString(comment)
			}
		case c == '"' || c == '\'':
			buf.WriteString(p.quoted())
		case c == '(':
			buf.WriteString(p.parens())
		case c == ';':
			p.pos++
			flush()
		case c == '{':
			p.pos++

			prelude := collapse(buf.String())
			buf.Reset()

			children, err := p.block(false)
			if err != nil {
				return nil, err
			}

			kind := ruleNode
			if strings.HasPrefix(prelude, "@") {
				kind = atNode
			}

			nodes = append(nodes, &node{kind: kind, prelude: prelude, children: children})
		case c == '}':
			p.pos++

			if top {
				return nil, &Error{Message: "Unexpected '}'"}
			}

			flush()

			return nodes, nil
		default:
			buf.WriteByte(c)
			p.pos++
		}
	}

	if !top {
		return nil, &Error{Message: "Missing closing '}'"}
	}

	flush()

	return nodes, nil
}

func (p *parser) comment() string {
	start := p.pos

	end := strings.Index(p.src[p.pos+2:], "*/")
	if end < 0 {
		p.pos = len(p.src)
	} else {
		p.pos += 2 + end + 2
	}

	return p.src[start:p.pos]
}

func (p *parser) quoted() string {
	start := p.pos
	quote := p.src[p.pos]
	p.pos++

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++

		if c == '\\' && p.pos < len(p.src) {
			p.pos++
			continue
		}

		if c == quote || c == '\n' {
			break
		}
	}

	return p.src[start:p.pos]
}

func (p *parser) parens() string {
	start := p.pos
	depth := 0

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch c {
		case '"', '\'':
			p.quoted()
			continue
		case '(':
			depth++
		case ')':
			depth--
		}

		p.pos++

		if depth == 0 {
			break
		}
	}

	return p.src[start:p.pos]
}

// item is one top-level output block
type item struct {
	wrappers  []string
	selectors []string
	lines     []string
	raw       string
}

func (it *item) empty() bool {
	if it.selectors != nil {
		return len(it.lines) == 0
	}

	return strings.TrimSpace(it.raw) == ""
}

func (it *item) hoisted() bool {
	return len(it.wrappers) == 0 && (strings.HasPrefix(it.raw, "@charset") || strings.HasPrefix(it.raw, "@import"))
}

type flattener struct {
	items []*item
}

// flatten resolves nesting: selectors are joined with their parents and grouping at-rules bubble up
func flatten(nodes []*node) ([]*item, error) {
	f := &flattener{}

	if err := f.walk(nodes, nil, nil); err != nil {
		return nil, err
	}

	return f.items, nil
}

func (f *flattener) walk(nodes []*node, selectors, wrappers []string) error {
	var current *item

	if selectors != nil {
		current = &item{wrappers: wrappers, selectors: selectors, lines: []string{}}
		f.items = append(f.items, current)
	}

	for _, n := range nodes {
		switch n.kind {
		case declNode:
			if current == nil {
				f.items = append(f.items, &item{wrappers: wrappers, raw: collapse(n.prelude) + ";"})
				continue
			}

			decl, err := declaration(n.prelude)
			if err != nil {
				return err
			}

			current.lines = append(current.lines, decl)
		case commentNode:
			if current == nil {
				f.items = append(f.items, &item{wrappers: wrappers, raw: n.prelude})
				continue
			}

			current.lines = append(current.lines, n.prelude)
		case ruleNode:
			if err := f.walk(n.children, combine(selectors, splitSelectors(n.prelude)), wrappers); err != nil {
				return err
			}
		case atNode:
			if groupingRules[atRuleName(n.prelude)] {
				if err := f.walk(n.children, selectors, wrap(wrappers, n.prelude)); err != nil {
					return err
				}

				continue
			}

			var b strings.Builder

			if err := renderVerbatim(&b, n, 0); err != nil {
				return err
			}

			f.items = append(f.items, &item{wrappers: wrappers, raw: strings.TrimRight(b.String(), "\n")})
		}
	}

	return nil
}

// renderVerbatim renders at-rules like @font-face or @keyframes without selector joining
func renderVerbatim(b *strings.Builder, n *node, depth int) error {
	indent := strings.Repeat("  ", depth)

	switch n.kind {
	case declNode:
		decl, err := declaration(n.prelude)
		if err != nil {
			return err
		}

		b.WriteString(indent + decl + "\n")
	case commentNode:
		b.WriteString(indent + n.prelude + "\n")
	default:
		b.WriteString(indent + n.prelude + " {\n")

		for _, child := range n.children {
			if err := renderVerbatim(b, child, depth+1); err != nil {
				return err
			}
		}

		b.WriteString(indent + "}\n")
	}

	return nil
}

// render prints items, sharing one wrapper block between consecutive items with the same wrappers
func render(items []*item) string {
	var (
		b    strings.Builder
		open []string
	)

	ordered := make([]*item, 0, len(items))

	for _, it := range items {
		if it.hoisted() {
			ordered = append(ordered, it)
		}
	}

	for _, it := range items {
		if !it.hoisted() {
			ordered = append(ordered, it)
		}
	}

	for _, it := range ordered {
		if it.empty() {
			continue
		}

		common := 0
		for common < len(open) && common < len(it.wrappers) && open[common] == it.wrappers[common] {
			common++
		}

		for len(open) > common {
			open = open[:len(open)-1]
			b.WriteString(strings.Repeat("  ", len(open)) + "}\n")
		}

		for _, w := range it.wrappers[common:] {
			b.WriteString(strings.Repeat("  ", len(open)) + w + " {\n")
			open = append(open, w)
		}

		it.render(&b, len(open))
	}

	for len(open) > 0 {
		open = open[:len(open)-1]
		b.WriteString(strings.Repeat("  ", len(open)) + "}\n")
	}

	return b.String()
}

func (it *item) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)

	if it.selectors == nil {
		for _, line := range strings.Split(it.raw, "\n") {
			b.WriteString(indent + line + "\n")
		}

		return
	}

	b.WriteString(indent + strings.Join(it.selectors, ",\n"+indent) + " {\n")

	for _, line := range it.lines {
		b.WriteString(indent + "  " + line + "\n")
	}

	b.WriteString(indent + "}\n")
}

// declaration normalises "name : value" to "name: value;"
func declaration(text string) (string, error) {
	idx := strings.IndexByte(text, ':')
	if idx <= 0 {
		return "", &Error{Message: fmt.Sprintf("Unrecognised input '%s'", collapse(text))}
	}

	name := strings.TrimSpace(text[:idx])
	value := strings.TrimSpace(text[idx+1:])

	return name + ": " + value + ";", nil
}

// combine joins nested selectors with their parents, & refers to the parent selector
func combine(parents, children []string) []string {
	combined := make([]string, 0, max(len(parents), 1)*len(children))

	if len(parents) == 0 {
		for _, c := range children {
			combined = append(combined, collapse(strings.ReplaceAll(c, "&", "")))
		}

		return combined
	}

	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				combined = append(combined, strings.ReplaceAll(c, "&", p))
			} else {
				combined = append(combined, p+" "+c)
			}
		}
	}

	return combined
}

// splitSelectors splits a selector list on top-level commas
func splitSelectors(prelude string) []string {
	var (
		parts []string
		quote byte
	)

	depth, start := 0, 0

	for i := 0; i < len(prelude); i++ {
		c := prelude[i]

		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, prelude[start:i])
				start = i + 1
			}
		}
	}

	parts = append(parts, prelude[start:])

	selectors := make([]string, 0, len(parts))

	for _, part := range parts {
		if s := collapse(part); s != "" {
			selectors = append(selectors, s)
		}
	}

	return selectors
}

// wrap nests an at-rule prelude, merging nested @media queries with "and"
func wrap(wrappers []string, prelude string) []string {
	out := append([]string(nil), wrappers...)

	if atRuleName(prelude) == "@media" && len(out) > 0 && atRuleName(out[len(out)-1]) == "@media" {
		query := strings.TrimSpace(strings.TrimPrefix(prelude, "@media"))
		out[len(out)-1] += " and " + query

		return out
	}

	return append(out, prelude)
}

func atRuleName(prelude string) string {
	if idx := strings.IndexAny(prelude, " \t\n("); idx >= 0 {
		return strings.ToLower(prelude[:idx])
	}

	return strings.ToLower(prelude)
}

// collapse trims and folds runs of whitespace into single spaces
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
