//go:generate mockgen -source=reporter.go -destination=reporter_mock.go -package=reporter
package reporter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"lesswatch/internal/app/compiler"
	"lesswatch/internal/app/errors"
	"lesswatch/internal/app/ledger"
	"lesswatch/internal/config"
)

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	pathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
	triggerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
)

// Reporter is the user facing log sink: one line per build outcome
type Reporter interface {
	Watching(dir string)
	Compiled(output string, gen ledger.Generation)
	Succeeded()
	Failed(err error)
}

type reporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	quiet  bool
	styled bool
	now    func() time.Time
}

// NewReporter creates a reporter writing to stdout and stderr
func NewReporter(cfg *config.Config) Reporter {
	return NewReporterWithOutput(cfg, os.Stdout, os.Stderr)
}

// NewReporterWithOutput creates a reporter with custom writers, styling only applies to terminals
func NewReporterWithOutput(cfg *config.Config, out, errOut io.Writer) Reporter {
	return &reporter{
		out:    out,
		errOut: errOut,
		quiet:  cfg.Quiet,
		styled: isTerminal(out),
		now:    time.Now,
	}
}

// Watching announces the watched directory
func (r *reporter) Watching(dir string) {
	r.info("Watching " + r.style(pathStyle, dir))
}

// Compiled reports a successful build with its trigger summary
func (r *reporter) Compiled(output string, gen ledger.Generation) {
	r.info(fmt.Sprintf("%s %s %s", r.style(successStyle, "Compiled to"), r.style(pathStyle, output), r.style(triggerStyle, gen.Summary())))
}

// Succeeded reports the end of a build-only run
func (r *reporter) Succeeded() {
	r.info(r.style(successStyle, "Build succeeded"))
}

// Failed reports a build error, positional errors get the timestamped format
func (r *reporter) Failed(err error) {
	var compileErr *compiler.Error

	if errors.As(err, &compileErr) && compileErr.Filename != "" {
		r.write(r.errOut, fmt.Sprintf("%s %s. File: %s (Line %d, Col %d)",
			r.style(errorStyle, "Error:"), compileErr.Message, compileErr.Filename, compileErr.Line, compileErr.Column))

		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.errOut, err.Error())
}

func (r *reporter) info(msg string) {
	if r.quiet {
		return
	}

	r.write(r.out, msg)
}

func (r *reporter) write(w io.Writer, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp := "[" + r.now().Format(config.TimestampFormat) + "]"

	fmt.Fprintf(w, "%s %s\n", r.style(timestampStyle, stamp), msg)
}

func (r *reporter) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}

	return s.Render(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(f.Fd())
}
