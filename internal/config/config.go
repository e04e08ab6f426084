package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"lesswatch/internal/app/errors"
)

// Config represents the watch session configuration
type Config struct {
	Entry      string    `yaml:"entry" mapstructure:"entry"`
	Output     string    `yaml:"output" mapstructure:"output"`
	WatchDir   string    `yaml:"watchDir,omitempty" mapstructure:"watchDir"`
	Extensions []string  `yaml:"extraWatchExtensions,omitempty" mapstructure:"extraWatchExtensions"`
	Delay      int       `yaml:"delay" mapstructure:"delay"`
	Quiet      bool      `yaml:"quiet" mapstructure:"quiet"`
	Build      bool      `yaml:"build" mapstructure:"build"`
	Less       Less      `yaml:"lessOptions" mapstructure:"lessOptions"`
	Watch      Watch     `yaml:"watchOptions" mapstructure:"watchOptions"`
	Logging    Logging   `yaml:"logging" mapstructure:"logging"`
	Telemetry  Telemetry `yaml:"telemetry,omitempty" mapstructure:"telemetry"`
}

// Less represents the options passed to the stylesheet compiler
type Less struct {
	Filename    string            `yaml:"filename,omitempty" mapstructure:"filename"`
	Paths       []string          `yaml:"paths,omitempty" mapstructure:"paths"`
	Rootpath    string            `yaml:"rootpath,omitempty" mapstructure:"rootpath"`
	RewriteURLs string            `yaml:"rewriteUrls,omitempty" mapstructure:"rewriteUrls"`
	Math        string            `yaml:"math,omitempty" mapstructure:"math"`
	StrictUnits bool              `yaml:"strictUnits,omitempty" mapstructure:"strictUnits"`
	GlobalVars  map[string]string `yaml:"globalVars,omitempty" mapstructure:"globalVars"`
	ModifyVars  map[string]string `yaml:"modifyVars,omitempty" mapstructure:"modifyVars"`
	URLArgs     string            `yaml:"urlArgs,omitempty" mapstructure:"urlArgs"`
	Lint        bool              `yaml:"lint,omitempty" mapstructure:"lint"`
	Compress    bool              `yaml:"compress,omitempty" mapstructure:"compress"`
	Command     string            `yaml:"command,omitempty" mapstructure:"command"`
}

// Watch represents the filesystem watcher options
type Watch struct {
	Cwd             string   `yaml:"cwd,omitempty" mapstructure:"cwd"`
	IgnoreInitial   bool     `yaml:"ignoreInitial" mapstructure:"ignoreInitial"`
	FollowSymlinks  bool     `yaml:"followSymlinks" mapstructure:"followSymlinks"`
	DisableGlobbing bool     `yaml:"disableGlobbing" mapstructure:"disableGlobbing"`
	Ignored         []string `yaml:"ignored,omitempty" mapstructure:"ignored"`
}

// Logging represents diagnostic logger settings
type Logging struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Telemetry represents error reporting settings
type Telemetry struct {
	DSN string `yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// Overrides holds values given on the command line, applied on top of the config file
type Overrides struct {
	Entry       string
	Output      string
	WatchDir    string
	Extensions  []string
	Delay       *int
	Quiet       bool
	Build       bool
	Compress    bool
	RewriteURLs string
	GlobalVars  map[string]string
	ModifyVars  map[string]string
	Paths       []string
	LogLevel    string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Watch.IgnoreInitial = DefaultIgnoreInitial
	cfg.Watch.FollowSymlinks = DefaultFollowSymlinks
	cfg.Watch.DisableGlobbing = DefaultDisableGlobbing
	cfg.Watch.Ignored = append([]string(nil), DefaultIgnored...)

	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat

	return cfg
}

// Template returns the configuration written by the init command
func Template() *Config {
	cfg := DefaultConfig()

	cfg.Entry = "src/index.less"
	cfg.Output = "dist/bundle.css"
	cfg.WatchDir = "src"
	cfg.Less.RewriteURLs = RewriteUrlsAll

	return cfg
}

// Load reads the config file (explicit path or lesswatch.yaml in the working directory),
// applies LESSWATCH_* environment overrides and resolves paths relative to the file
func Load(file string) (*Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load(EnvFile)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := file
	if path == "" {
		if _, err := os.Stat(ConfigFile); err == nil {
			path = ConfigFile
		}
	}

	var absPath string

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
		}

		absPath = abs
		v.SetConfigFile(absPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
	}

	if absPath != "" {
		if err := cfg.restoreVarCase(absPath); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
		}

		cfg.resolveRelativeTo(filepath.Dir(absPath))
	}

	return cfg, nil
}

// setDefaults registers every key so environment variables are picked up on unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("entry", "")
	v.SetDefault("output", "")
	v.SetDefault("watchDir", "")
	v.SetDefault("extraWatchExtensions", []string{})
	v.SetDefault("delay", 0)
	v.SetDefault("quiet", false)
	v.SetDefault("build", false)

	v.SetDefault("lessOptions.filename", "")
	v.SetDefault("lessOptions.rootpath", "")
	v.SetDefault("lessOptions.rewriteUrls", "")
	v.SetDefault("lessOptions.math", "")
	v.SetDefault("lessOptions.strictUnits", false)
	v.SetDefault("lessOptions.urlArgs", "")
	v.SetDefault("lessOptions.lint", false)
	v.SetDefault("lessOptions.compress", false)
	v.SetDefault("lessOptions.command", "")

	v.SetDefault("watchOptions.cwd", "")
	v.SetDefault("watchOptions.ignoreInitial", DefaultIgnoreInitial)
	v.SetDefault("watchOptions.followSymlinks", DefaultFollowSymlinks)
	v.SetDefault("watchOptions.disableGlobbing", DefaultDisableGlobbing)
	v.SetDefault("watchOptions.ignored", DefaultIgnored)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.dsn", "")
}

// restoreVarCase re-reads less variable maps because viper lowercases map keys
func (c *Config) restoreVarCase(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw struct {
		Less struct {
			GlobalVars map[string]string `yaml:"globalVars"`
			ModifyVars map[string]string `yaml:"modifyVars"`
		} `yaml:"lessOptions"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.Less.GlobalVars) > 0 {
		c.Less.GlobalVars = raw.Less.GlobalVars
	}

	if len(raw.Less.ModifyVars) > 0 {
		c.Less.ModifyVars = raw.Less.ModifyVars
	}

	return nil
}

// resolveRelativeTo makes file-relative paths absolute against the config file directory
func (c *Config) resolveRelativeTo(dir string) {
	c.Entry = resolvePath(dir, c.Entry)
	c.Output = resolvePath(dir, c.Output)
	c.WatchDir = resolvePath(dir, c.WatchDir)
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// Apply merges command-line overrides into the configuration
func (c *Config) Apply(o Overrides) {
	if o.Entry != "" {
		c.Entry = o.Entry
	}

	if o.Output != "" {
		c.Output = o.Output
	}

	if o.WatchDir != "" {
		c.WatchDir = o.WatchDir
	}

	if o.RewriteURLs != "" {
		c.Less.RewriteURLs = o.RewriteURLs
	}

	if len(o.GlobalVars) > 0 {
		c.Less.GlobalVars = mergeVars(c.Less.GlobalVars, o.GlobalVars)
	}

	if len(o.ModifyVars) > 0 {
		c.Less.ModifyVars = mergeVars(c.Less.ModifyVars, o.ModifyVars)
	}

	c.Less.Paths = append(c.Less.Paths, o.Paths...)
	c.Extensions = append(c.Extensions, o.Extensions...)

	if o.Delay != nil {
		c.Delay = *o.Delay
	}

	if o.Build {
		c.Build = true
	}

	if o.Quiet {
		c.Quiet = true
	}

	if o.Compress {
		c.Less.Compress = true
	}

	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

func mergeVars(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}

	for k, v := range src {
		dst[k] = v
	}

	return dst
}

// Validate validates the configuration before a session starts
func (c *Config) Validate() error {
	if c.Entry == "" {
		return errors.ErrNoEntryFile
	}

	if c.Output == "" {
		return errors.ErrNoOutputFile
	}

	if c.Delay < 0 {
		return errors.ErrInvalidDelay
	}

	switch c.Less.RewriteURLs {
	case "", RewriteUrlsOff, RewriteUrlsAll, RewriteUrlsLocal:
	default:
		return fmt.Errorf("%w: '%s' (must be 'off', 'all', or 'local')", errors.ErrInvalidRewriteUrls, c.Less.RewriteURLs)
	}

	return nil
}
