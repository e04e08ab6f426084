package compiler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

const entry = "/src/a.less"

func testLogger() logger.Logger {
	return logger.NewLoggerWithOutput(config.DefaultConfig(), io.Discard)
}

func newTestCompiler(t *testing.T, files map[string]string) (Compiler, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()

	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return newBuiltinCompiler(fs, testLogger()), fs
}

func compile(t *testing.T, files map[string]string, source string, opts config.Less) (*Result, error) {
	t.Helper()

	c, _ := newTestCompiler(t, files)

	if opts.Filename == "" {
		opts.Filename = entry
	}

	return c.Compile(context.Background(), source, opts)
}

func Test_New(t *testing.T) {
	cfg := config.DefaultConfig()

	c := New(cfg, afero.NewMemMapFs(), testLogger())
	assert.IsType(t, &builtin{}, c)

	cfg.Less.Command = "lessc"

	c = New(cfg, afero.NewMemMapFs(), testLogger())
	assert.IsType(t, &execCompiler{}, c)
}

func Test_Builtin_Render(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		opts     config.Less
		expected string
	}{
		{
			name:     "variables and nesting",
			source:   "@color: red;\n.a {\n  color: @color;\n  .b { margin: 0; }\n  &:hover { color: blue; }\n}\n",
			expected: ".a {\n  color: red;\n}\n.a .b {\n  margin: 0;\n}\n.a:hover {\n  color: blue;\n}\n",
		},
		{
			name:     "interpolation and escapes",
			source:   "@name: \"btn\";\n.@{name} { content: \"@{name}-x\"; w: ~\"calc(100% - 10px)\"; }\n",
			expected: ".btn {\n  content: \"btn-x\";\n  w: calc(100% - 10px);\n}\n",
		},
		{
			name:     "lazy evaluation uses the last definition",
			source:   ".a { width: @w; }\n@w: @base;\n@base: 10px;\n@base: 20px;\n",
			expected: ".a {\n  width: 20px;\n}\n",
		},
		{
			name:     "selector lists",
			source:   ".a, .b {\n  .c, & + .d { x: y; }\n}\n",
			expected: ".a .c,\n.a + .d,\n.b .c,\n.b + .d {\n  x: y;\n}\n",
		},
		{
			name:     "media bubbles and merges",
			source:   ".a {\n  color: red;\n  @media screen {\n    color: blue;\n    @media (min-width: 768px) { color: green; }\n  }\n}\n",
			expected: ".a {\n  color: red;\n}\n@media screen {\n  .a {\n    color: blue;\n  }\n}\n@media screen and (min-width: 768px) {\n  .a {\n    color: green;\n  }\n}\n",
		},
		{
			name:     "comments",
			source:   "// line comment\n/* keep */\n.a { color: red; } // trailing\n",
			expected: "/* keep */\n.a {\n  color: red;\n}\n",
		},
		{
			name:     "protocol in unquoted url is not a comment",
			source:   ".a { background: url(http://example.com/x.png); }\n",
			expected: ".a {\n  background: url(http://example.com/x.png);\n}\n",
		},
		{
			name:     "css imports are kept and hoisted",
			source:   ".a { color: red; }\n@import \"theme.css\";\n@import url(\"https://x/y.css\") print;\n",
			expected: "@import \"theme.css\";\n@import url(\"https://x/y.css\") print;\n.a {\n  color: red;\n}\n",
		},
		{
			name:     "keyframes are rendered verbatim",
			source:   "@keyframes spin { from { transform: rotate(0deg); } to { transform: rotate(360deg); } }\n",
			expected: "@keyframes spin {\n  from {\n    transform: rotate(0deg);\n  }\n  to {\n    transform: rotate(360deg);\n  }\n}\n",
		},
		{
			name:     "empty rules are dropped",
			source:   ".a { }\n.b { c: d; }\n",
			expected: ".b {\n  c: d;\n}\n",
		},
		{
			name:     "global vars are overridden by the file",
			source:   "@color: red;\n.a { color: @color; border: @brand; }\n",
			opts:     config.Less{GlobalVars: map[string]string{"color": "green", "brand": "blue"}},
			expected: ".a {\n  color: red;\n  border: blue;\n}\n",
		},
		{
			name:     "modify vars override the file",
			source:   "@color: red;\n.a { color: @color; }\n",
			opts:     config.Less{ModifyVars: map[string]string{"@color": "black"}},
			expected: ".a {\n  color: black;\n}\n",
		},
		{
			name:     "compress",
			source:   ".a {\n  color: red;\n}\n",
			opts:     config.Less{Compress: true},
			expected: ".a{color:red}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := compile(t, nil, tt.source, tt.opts)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.CSS)
		})
	}
}

func Test_Builtin_Imports(t *testing.T) {
	files := map[string]string{
		"/src/b.less":          "@c: blue;\n.b { width: 1px; }\n",
		"/src/print.less":      ".p { a: b; }\n",
		"/src/ref.less":        "@r: 3px;\n.hidden { x: y; }\n",
		"/src/raw.css":         ".raw { v: @notavar; }\n",
		"/lib/shared.less":     ".shared { s: t; }\n",
		"/src/parts/img.less":  ".i { background: url(\"img/x.png\"); }\n",
		"/src/parts/self.less": ".s { background: url(./img/y.png); }\n",
	}

	tests := []struct {
		name     string
		source   string
		opts     config.Less
		expected string
		imports  []string
	}{
		{
			name:     "inlines imports and shares variables",
			source:   "@import \"b\";\n.a { color: @c; }\n",
			expected: ".b {\n  width: 1px;\n}\n.a {\n  color: blue;\n}\n",
			imports:  []string{"/src/b.less"},
		},
		{
			name:     "imports once by default",
			source:   "@import \"b\";\n@import \"b.less\";\n",
			expected: ".b {\n  width: 1px;\n}\n",
			imports:  []string{"/src/b.less"},
		},
		{
			name:     "multiple imports again",
			source:   "@import \"b\";\n@import (multiple) \"b\";\n",
			expected: ".b {\n  width: 1px;\n}\n.b {\n  width: 1px;\n}\n",
			imports:  []string{"/src/b.less"},
		},
		{
			name:     "reference imports variables only",
			source:   "@import (reference) \"ref\";\n.a { border: @r; }\n",
			expected: ".a {\n  border: 3px;\n}\n",
			imports:  []string{"/src/ref.less"},
		},
		{
			name:     "inline imports are not processed",
			source:   "@import (inline) \"raw.css\";\n",
			expected: ".raw {\n  v: @notavar;\n}\n",
			imports:  []string{"/src/raw.css"},
		},
		{
			name:     "optional missing import",
			source:   "@import (optional) \"missing\";\n.a { b: c; }\n",
			expected: ".a {\n  b: c;\n}\n",
		},
		{
			name:     "media import",
			source:   "@import \"print\" print;\n",
			expected: "@media print {\n  .p {\n    a: b;\n  }\n}\n",
			imports:  []string{"/src/print.less"},
		},
		{
			name:     "include paths",
			source:   "@import \"shared\";\n",
			opts:     config.Less{Paths: []string{"/lib"}},
			expected: ".shared {\n  s: t;\n}\n",
			imports:  []string{"/lib/shared.less"},
		},
		{
			name:     "urls kept by default",
			source:   "@import \"parts/img\";\n",
			expected: ".i {\n  background: url(\"img/x.png\");\n}\n",
			imports:  []string{"/src/parts/img.less"},
		},
		{
			name:     "rewrite all urls with args",
			source:   "@import \"parts/img\";\n",
			opts:     config.Less{RewriteURLs: config.RewriteUrlsAll, URLArgs: "v=1"},
			expected: ".i {\n  background: url(\"parts/img/x.png?v=1\");\n}\n",
			imports:  []string{"/src/parts/img.less"},
		},
		{
			name:     "rewrite local urls only",
			source:   "@import \"parts/img\";\n@import \"parts/self\";\n",
			opts:     config.Less{RewriteURLs: config.RewriteUrlsLocal},
			expected: ".i {\n  background: url(\"img/x.png\");\n}\n.s {\n  background: url(./parts/img/y.png);\n}\n",
			imports:  []string{"/src/parts/img.less", "/src/parts/self.less"},
		},
		{
			name:     "rootpath",
			source:   ".a { background: url(logo.png); }\n",
			opts:     config.Less{Rootpath: "/static/"},
			expected: ".a {\n  background: url(/static/logo.png);\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := compile(t, files, tt.source, tt.opts)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.CSS)
			assert.Equal(t, tt.imports, result.Imports)
		})
	}
}

func Test_Builtin_Errors(t *testing.T) {
	files := map[string]string{
		"/src/broken.less": ".x {\n  y: @nope;\n}\n",
	}

	tests := []struct {
		name     string
		source   string
		expected *Error
	}{
		{
			name:     "undefined variable",
			source:   ".a {\n  color: @missing;\n}\n",
			expected: &Error{Message: "variable @missing is undefined", Filename: entry, Line: 2, Column: 9},
		},
		{
			name:     "missing closing brace",
			source:   ".a {\n  color: red;\n",
			expected: &Error{Message: "Missing closing '}'", Filename: entry, Line: 1, Column: 3},
		},
		{
			name:     "unexpected closing brace",
			source:   ".a { }\n}",
			expected: &Error{Message: "Unexpected '}'", Filename: entry, Line: 2, Column: 0},
		},
		{
			name:     "missing import",
			source:   "\n@import \"missing\";\n",
			expected: &Error{Message: "'missing' wasn't found", Filename: entry, Line: 2, Column: 0},
		},
		{
			name:     "error inside an import",
			source:   "@import \"broken\";\n",
			expected: &Error{Message: "variable @nope is undefined", Filename: "/src/broken.less", Line: 2, Column: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, files, tt.source, config.Less{})

			var compileErr *Error
			require.True(t, errors.As(err, &compileErr), "expected *Error, got %v", err)
			assert.Equal(t, tt.expected, compileErr)
		})
	}
}

func Test_Builtin_RecursiveVariable(t *testing.T) {
	_, err := compile(t, nil, "@a: @b;\n@b: @a;\n.x { y: @a; }\n", config.Less{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive variable definition")
}

func Test_Builtin_UnsupportedMixinCall(t *testing.T) {
	_, err := compile(t, nil, ".m { a: b; }\n.a { .m(); }\n", config.Less{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unrecognised input")
}

func Test_Builtin_CanceledContext(t *testing.T) {
	c, _ := newTestCompiler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, ".a { b: c; }", config.Less{Filename: entry})

	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Error_Error(t *testing.T) {
	assert.Equal(t, "boom", (&Error{Message: "boom"}).Error())
	assert.Equal(t, "boom in a.less on line 2, column 4", (&Error{Message: "boom", Filename: "a.less", Line: 2, Column: 4}).Error())
}

func Test_lesscArgs(t *testing.T) {
	args := lesscArgs(config.Less{
		Filename:    "/src/a.less",
		Paths:       []string{"/lib"},
		Rootpath:    "/static/",
		RewriteURLs: "all",
		Math:        "always",
		StrictUnits: true,
		GlobalVars:  map[string]string{"b": "2", "a": "1"},
		ModifyVars:  map[string]string{"c": "3"},
		URLArgs:     "v=1",
		Lint:        true,
	})

	assert.Equal(t, []string{
		"--no-color",
		"--include-path=/src" + string(os.PathListSeparator) + "/lib",
		"--rootpath=/static/",
		"--rewrite-urls=all",
		"--math=always",
		"--strict-units=on",
		"--global-var=a=1",
		"--global-var=b=2",
		"--modify-var=c=3",
		"--url-args=v=1",
		"--lint",
		"-",
	}, args)
}

func Test_parseCommandError(t *testing.T) {
	tests := []struct {
		name      string
		stderr    string
		expected  *Error
		sentinel  bool
		substring string
	}{
		{
			name:     "positional parse error",
			stderr:   "ParseError: Unrecognised input in /src/a.less on line 3, column 1:\n2 .a {\n3 }}\n",
			expected: &Error{Message: "Unrecognised input", Filename: "/src/a.less", Line: 3, Column: 1},
		},
		{
			name:      "plain stderr",
			stderr:    "lessc: command failed\n",
			sentinel:  true,
			substring: "lessc: command failed",
		},
		{
			name:     "empty stderr",
			sentinel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseCommandError(tt.stderr, assert.AnError)

			if tt.expected != nil {
				assert.Equal(t, tt.expected, err)
				return
			}

			assert.ErrorIs(t, err, errors.ErrCompilerCommandFailed)
			assert.Contains(t, err.Error(), tt.substring)
		})
	}
}

func Test_Exec_Compile(t *testing.T) {
	c := newExecCompiler("sh -c cat", testLogger())

	result, err := c.Compile(context.Background(), ".a { b: c; }", config.Less{})

	require.NoError(t, err)
	assert.Equal(t, ".a { b: c; }", result.CSS)
}

func Test_Exec_CompileError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-lessc")
	content := "#!/bin/sh\necho 'ParseError: Unrecognised input in /src/a.less on line 3, column 1:' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))

	c := newExecCompiler(script, testLogger())

	_, err := c.Compile(context.Background(), ".a {", config.Less{})

	var compileErr *Error
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "/src/a.less", compileErr.Filename)
	assert.Equal(t, 3, compileErr.Line)
}
