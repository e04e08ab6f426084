package compiler

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

const (
	cssMediaType  = "text/css"
	inputFilename = "input"
)

var escapePattern = regexp.MustCompile(`~"((?:[^"\\]|\\.)*)"|~'((?:[^'\\]|\\.)*)'`)

// builtin compiles a LESS subset: imports, variables, escapes, nesting and url options.
// Mixins, guards, operations and functions need an external compiler
type builtin struct {
	fs     afero.Fs
	minify *minify.M
	log    logger.Logger
}

func newBuiltinCompiler(fs afero.Fs, log logger.Logger) Compiler {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)

	return &builtin{
		fs:     fs,
		minify: m,
		log:    log,
	}
}

// Compile renders source, resolving imports relative to opts.Filename
func (b *builtin) Compile(ctx context.Context, source string, opts config.Less) (*Result, error) {
	filename := opts.Filename
	if filename == "" {
		filename = inputFilename
	}

	l := &loader{
		fs:    b.fs,
		paths: opts.Paths,
		vars:  newScope(opts.GlobalVars, opts.ModifyVars),
		seen:  map[string]bool{},
	}

	if abs, err := filepath.Abs(filename); err == nil {
		l.seen[abs] = true
	}

	if err := l.load(filename, source, 0, false); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rewriter := newURLRewriter(opts)

	var out strings.Builder

	for _, seg := range l.segments {
		if seg.raw {
			out.WriteString(seg.text)
			continue
		}

		text, at, err := l.vars.interpolate(seg.text)
		if err != nil {
			var positional *Error
			if errors.As(err, &positional) {
				return nil, positional
			}

			return nil, seg.errorAt(at, err.Error())
		}

		out.WriteString(rewriter.rewrite(text, seg.file))
	}

	nodes, err := parse(unescape(out.String()))
	if err != nil {
		return nil, err
	}

	items, err := flatten(nodes)
	if err != nil {
		return nil, err
	}

	rendered := render(items)

	if opts.Compress {
		minified, err := b.minify.String(cssMediaType, rendered)
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}

		rendered = minified
	}

	b.log.Debug().Msgf("Compiled %s with %d imports", filename, len(l.imports))

	return &Result{CSS: rendered, Imports: l.imports}, nil
}

// unescape replaces ~"value" with value
func unescape(text string) string {
	return escapePattern.ReplaceAllStringFunc(text, func(m string) string {
		return m[2 : len(m)-1]
	})
}
