package config

import "time"

// app constants
const (
	AppName        = "lesswatch"
	AppDescription = "watch a directory and rebuild a less stylesheet on change"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"

	Version = "1.0.0"
)

// config file constants
const (
	ConfigFile = "lesswatch.yaml"
	EnvPrefix  = "LESSWATCH"
	EnvFile    = ".env"
)

// rewrite-urls values
const (
	RewriteUrlsOff   = "off"
	RewriteUrlsAll   = "all"
	RewriteUrlsLocal = "local"
)

// watch constants
const (
	DefaultIgnoreInitial   = true
	DefaultFollowSymlinks  = true
	DefaultDisableGlobbing = true

	WatchEventBuffer = 64
)

// output constants
const (
	OutputDirMode  = 0o755
	OutputFileMode = 0o644

	TimestampFormat = "2006-01-02 15:04:05"
)

// telemetry constants
const (
	TelemetryFlushTimeout = 2 * time.Second
)

// DefaultIgnored lists the glob patterns skipped by the watcher unless configured otherwise
var DefaultIgnored = []string{"**/node_modules/**", "**/.git/**"}
