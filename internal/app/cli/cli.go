//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/app/session"
	"lesswatch/internal/app/telemetry"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// CLI defines the interface for cli operations
type CLI interface {
	Execute() (exitCode int, err error)
}

// cli represents the command-line interface for the application
type cli struct {
	cfg       *config.Config
	options   *Options
	fs        afero.Fs
	session   session.Session
	telemetry telemetry.Telemetry
	out       io.Writer
	errOut    io.Writer
	log       logger.Logger
}

// NewCLI creates a new cli instance
func NewCLI(
	cfg *config.Config,
	options *Options,
	fs afero.Fs,
	session session.Session,
	telemetry telemetry.Telemetry,
	log logger.Logger,
) CLI {
	return &cli{
		cfg:       cfg,
		options:   options,
		fs:        fs,
		session:   session,
		telemetry: telemetry,
		out:       os.Stdout,
		errOut:    os.Stderr,
		log:       log.WithComponent("CLI"),
	}
}

// Execute runs the parsed command and returns the process exit code
func (c *cli) Execute() (int, error) {
	switch c.options.Type {
	case CommandHelp:
		return c.handleHelp()
	case CommandVersion:
		return c.handleVersion()
	case CommandInit:
		return c.handleInit()
	default:
		return c.handleWatch()
	}
}

// handleWatch validates the configuration and runs the session until interrupted
func (c *cli) handleWatch() (int, error) {
	if len(c.options.Ignored) > 0 {
		fmt.Fprintf(c.errOut, "%s Ignored values %s\n", warnLabel.Render("Warning:"), strings.Join(c.options.Ignored, ", "))
	}

	if err := c.cfg.Validate(); err != nil {
		c.printError(err)
		return 1, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer c.telemetry.Flush()

	c.log.Debug().Msgf("Starting session for %s -> %s", c.cfg.Entry, c.cfg.Output)

	if err := c.session.Run(ctx); err != nil {
		// the reporter already printed the build error
		if errors.Is(err, errors.ErrBuildFailed) {
			return 1, err
		}

		c.log.Error().Err(err).Msg("Session failed")
		c.telemetry.CaptureError(err)
		c.printError(err)

		return 1, err
	}

	return 0, nil
}

// handleInit writes the config template into the working directory
func (c *cli) handleInit() (int, error) {
	exists, err := afero.Exists(c.fs, config.ConfigFile)
	if err != nil {
		c.printError(err)
		return 1, err
	}

	if exists {
		err := fmt.Errorf("%w: %s", errors.ErrConfigExists, config.ConfigFile)
		c.printError(err)

		return 1, err
	}

	data, err := yaml.Marshal(config.Template())
	if err != nil {
		c.printError(err)
		return 1, err
	}

	if err := afero.WriteFile(c.fs, config.ConfigFile, data, config.OutputFileMode); err != nil {
		c.printError(err)
		return 1, err
	}

	fmt.Fprintf(c.out, "Created %s\n", config.ConfigFile)

	return 0, nil
}

func (c *cli) handleHelp() (int, error) {
	fmt.Fprint(c.out, renderHelp())
	return 0, nil
}

func (c *cli) handleVersion() (int, error) {
	fmt.Fprintln(c.out, RenderTitle())
	return 0, nil
}

func (c *cli) printError(err error) {
	fmt.Fprintf(c.errOut, "%s %v\n", errorLabel.Render("Error:"), err)
}
