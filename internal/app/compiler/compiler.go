//go:generate mockgen -source=compiler.go -destination=compiler_mock.go -package=compiler
package compiler

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// Compiler turns stylesheet source into CSS
type Compiler interface {
	Compile(ctx context.Context, source string, opts config.Less) (*Result, error)
}

// Result is the output of a successful compile
type Result struct {
	CSS     string
	Imports []string
}

// Error is a compile error, Line is 1-based and Column 0-based when Filename is set
type Error struct {
	Message  string
	Filename string
	Line     int
	Column   int
}

// Error renders the message with its position
func (e *Error) Error() string {
	if e.Filename == "" {
		return e.Message
	}

	return fmt.Sprintf("%s in %s on line %d, column %d", e.Message, e.Filename, e.Line, e.Column)
}

// New returns the external command backend when lessOptions.command is set, the builtin compiler otherwise
func New(cfg *config.Config, fs afero.Fs, log logger.Logger) Compiler {
	log = log.WithComponent("COMPILER")

	if cfg.Less.Command != "" {
		log.Debug().Msgf("Using external compiler: %s", cfg.Less.Command)
		return newExecCompiler(cfg.Less.Command, log)
	}

	return newBuiltinCompiler(fs, log)
}
