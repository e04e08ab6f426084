package builder

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"lesswatch/internal/app/compiler"
	"lesswatch/internal/app/errors"
	"lesswatch/internal/app/ledger"
	"lesswatch/internal/app/reporter"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// Params contains the dependencies of an Executor
type Params struct {
	Entry     string
	Output    string
	RelOutput string
	Options   config.Less
	Fs        afero.Fs
	Compiler  compiler.Compiler
	Ledger    *ledger.Ledger
	Reporter  reporter.Reporter
	Log       logger.Logger
}

// Executor compiles the entry into the output. Only the most recently started build writes or reports
type Executor struct {
	entry     string
	output    string
	relOutput string
	options   config.Less
	fs        afero.Fs
	compiler  compiler.Compiler
	ledger    *ledger.Ledger
	reporter  reporter.Reporter
	outputMu  sync.Mutex
	wg        conc.WaitGroup
	log       logger.Logger
}

// NewExecutor creates an Executor, the entry path is the default compiler filename
func NewExecutor(p Params) *Executor {
	options := p.Options
	if options.Filename == "" {
		options.Filename = p.Entry
	}

	return &Executor{
		entry:     p.Entry,
		output:    p.Output,
		relOutput: p.RelOutput,
		options:   options,
		fs:        p.Fs,
		compiler:  p.Compiler,
		ledger:    p.Ledger,
		reporter:  p.Reporter,
		log:       p.Log.WithComponent("BUILDER"),
	}
}

// Build closes the open generation and runs it on the calling goroutine
func (e *Executor) Build(ctx context.Context) error {
	return e.Run(ctx, e.ledger.Swap())
}

// Dispatch runs a generation in the background, it is not canceled with ctx
func (e *Executor) Dispatch(ctx context.Context, gen ledger.Generation) {
	ctx = context.WithoutCancel(ctx)

	e.wg.Go(func() {
		// the outcome is reported, nothing to propagate
		_ = e.Run(ctx, gen)
	})
}

// Wait blocks until every dispatched build has finished
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Run compiles, then writes and reports unless a newer build started meanwhile.
// The returned error is nil for a superseded build
func (e *Executor) Run(ctx context.Context, gen ledger.Generation) error {
	e.log.Debug().Msgf("Build %d started %s", gen.Token, gen.Summary())

	css, err := e.compile(ctx)

	e.outputMu.Lock()
	defer e.outputMu.Unlock()

	if !e.ledger.IsCurrent(gen.Token) {
		e.log.Debug().Msgf("Build %d superseded, discarding result", gen.Token)
		return nil
	}

	if err == nil && !e.options.Lint {
		err = e.write(css)
	}

	if err != nil {
		e.reporter.Failed(err)
		return err
	}

	e.reporter.Compiled(e.relOutput, gen)

	return nil
}

func (e *Executor) compile(ctx context.Context) (string, error) {
	source, err := afero.ReadFile(e.fs, e.entry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrFailedToReadEntry, err)
	}

	result, err := e.compiler.Compile(ctx, string(source), e.options)
	if err != nil {
		return "", err
	}

	if result == nil {
		return "", errors.ErrCompilerOutputUndefined
	}

	for _, imp := range result.Imports {
		e.log.Debug().Msgf("Imported %s", imp)
	}

	return result.CSS, nil
}

func (e *Executor) write(css string) error {
	if err := afero.WriteFile(e.fs, e.output, []byte(css), config.OutputFileMode); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWriteOutput, err)
	}

	return nil
}
