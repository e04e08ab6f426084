package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrConfigExists        = errors.New("config file already exists")

	ErrNoEntryFile        = errors.New("no entry file specified")
	ErrNoOutputFile       = errors.New("no output file specified")
	ErrInvalidDelay       = errors.New("delay must not be negative")
	ErrInvalidRewriteUrls = errors.New("invalid rewrite-urls value")
	ErrInvalidIgnoreGlob  = errors.New("invalid ignore pattern")

	ErrFailedToGetWorkingDir   = errors.New("failed to get working directory")
	ErrFailedToCreateOutputDir = errors.New("failed to create output directory")
	ErrFailedToSubscribe       = errors.New("failed to subscribe to watcher")
	ErrFailedToWriteOutput     = errors.New("failed to write output file")
	ErrFailedToReadEntry       = errors.New("failed to read entry file")
	ErrBuildFailed             = errors.New("build failed")

	ErrCompilerOutputUndefined = errors.New("output is undefined")
	ErrCompilerCommandFailed   = errors.New("compiler command failed")

	ErrUnknownCommand = errors.New("unknown command")

	ErrFailedToInitTelemetry = errors.New("failed to initialize telemetry")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
