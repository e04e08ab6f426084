package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

var lesscErrorPattern = regexp.MustCompile(`(?m)^(?:\w*Error: )?(.+?) in (.+?) on line (\d+), column (\d+):?`)

// execCompiler pipes the source into an external lessc compatible command
type execCompiler struct {
	command []string
	minify  *minify.M
	log     logger.Logger
}

func newExecCompiler(command string, log logger.Logger) Compiler {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)

	return &execCompiler{
		command: strings.Fields(command),
		minify:  m,
		log:     log,
	}
}

// Compile runs the command with the source on stdin and CSS expected on stdout
func (c *execCompiler) Compile(ctx context.Context, source string, opts config.Less) (*Result, error) {
	args := append(append([]string(nil), c.command[1:]...), lesscArgs(opts)...)

	cmd := exec.CommandContext(ctx, c.command[0], args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Debug().Msgf("Running %s %s", c.command[0], strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return nil, parseCommandError(stderr.String(), err)
	}

	output := stdout.String()

	if opts.Compress {
		minified, err := c.minify.String(cssMediaType, output)
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}

		output = minified
	}

	return &Result{CSS: output}, nil
}

// lesscArgs maps compiler options to lessc flags, reading the source from stdin
func lesscArgs(opts config.Less) []string {
	args := []string{"--no-color"}

	paths := append([]string(nil), opts.Paths...)
	if opts.Filename != "" {
		paths = append([]string{filepath.Dir(opts.Filename)}, paths...)
	}

	if len(paths) > 0 {
		args = append(args, "--include-path="+strings.Join(paths, string(os.PathListSeparator)))
	}

	if opts.Rootpath != "" {
		args = append(args, "--rootpath="+opts.Rootpath)
	}

	if opts.RewriteURLs != "" {
		args = append(args, "--rewrite-urls="+opts.RewriteURLs)
	}

	if opts.Math != "" {
		args = append(args, "--math="+opts.Math)
	}

	if opts.StrictUnits {
		args = append(args, "--strict-units=on")
	}

	for _, name := range sortedKeys(opts.GlobalVars) {
		args = append(args, fmt.Sprintf("--global-var=%s=%s", name, opts.GlobalVars[name]))
	}

	for _, name := range sortedKeys(opts.ModifyVars) {
		args = append(args, fmt.Sprintf("--modify-var=%s=%s", name, opts.ModifyVars[name]))
	}

	if opts.URLArgs != "" {
		args = append(args, "--url-args="+opts.URLArgs)
	}

	if opts.Lint {
		args = append(args, "--lint")
	}

	return append(args, "-")
}

// parseCommandError extracts the positional error lessc prints on stderr
func parseCommandError(stderr string, err error) error {
	if m := lesscErrorPattern.FindStringSubmatch(stderr); m != nil {
		line, _ := strconv.Atoi(m[3])
		col, _ := strconv.Atoi(m[4])

		return &Error{Message: m[1], Filename: m[2], Line: line, Column: col}
	}

	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s", errors.ErrCompilerCommandFailed, msg)
	}

	return fmt.Errorf("%w: %w", errors.ErrCompilerCommandFailed, err)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
