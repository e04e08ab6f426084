package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"lesswatch/internal/config"
)

// CommandType represents the type of CLI command
type CommandType int

// Command type values
const (
	CommandWatch CommandType = iota
	CommandInit
	CommandVersion
	CommandHelp
)

// Options contains the parsed command-line arguments
type Options struct {
	Type       CommandType
	ConfigFile string
	Overrides  config.Overrides
	Ignored    []string
}

// rootFlags holds raw flag values that need post-processing
type rootFlags struct {
	version    bool
	delay      int
	globalVars string
	modifyVars string
	ext        string
}

var varSeparator = regexp.MustCompile(`[&,]`)

// Parse parses command-line args and returns a Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{Type: CommandWatch}

	var flags rootFlags

	root := buildRootCommand(result, &flags)
	root.AddCommand(
		buildInitCommand(result),
		buildVersionCommand(result),
	)

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	if flags.version {
		result.Type = CommandVersion
	}

	if root.Flags().Changed("delay") {
		delay := flags.delay
		result.Overrides.Delay = &delay
	}

	result.Overrides.GlobalVars = parseVars(flags.globalVars)
	result.Overrides.ModifyVars = parseVars(flags.modifyVars)
	result.Overrides.Extensions = splitList(flags.ext)

	return result, nil
}

// buildRootCommand creates the root cobra command
func buildRootCommand(result *Options, flags *rootFlags) *cobra.Command {
	o := &result.Overrides

	cmd := &cobra.Command{
		Use:           "lesswatch <entry> <output>",
		Short:         "Watch a directory and rebuild a less stylesheet on change",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				o.Entry = args[0]
			}

			if len(args) > 1 {
				o.Output = args[1]
			}

			if len(args) > 2 {
				result.Ignored = args[2:]
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	f := cmd.Flags()
	f.BoolVarP(&flags.version, "version", "v", false, "Show version information")
	f.StringVarP(&result.ConfigFile, "config", "f", "", "Path of the config file")
	f.StringVarP(&o.WatchDir, "watch-dir", "d", "", "Directory to watch")
	f.StringVar(&o.RewriteURLs, "rewrite-urls", "", "Less rewrite-urls option (off, local or all)")
	f.StringVar(&flags.globalVars, "global-vars", "", "Less global variables, k=v separated by comma")
	f.StringVar(&flags.modifyVars, "modify-vars", "", "Less modify variables, k=v separated by comma")
	f.StringArrayVar(&o.Paths, "include-path", nil, "Extra include path for less imports")
	f.StringVar(&flags.ext, "ext", "", "Extra file extensions to watch, separated by comma")
	f.BoolVar(&o.Build, "build", false, "Build once without watching")
	f.IntVar(&flags.delay, "delay", 0, "Milliseconds to wait before building")
	f.BoolVarP(&o.Quiet, "quiet", "q", false, "Disable all logs except errors")
	f.BoolVar(&o.Compress, "compress", false, "Minify the output")
	f.StringVar(&o.LogLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		result.Type = CommandHelp
	})

	return cmd
}

// buildInitCommand creates the init subcommand
func buildInitCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: fmt.Sprintf("Generate %s template", config.ConfigFile),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandInit
		},
	}

	return cmd
}

// buildVersionCommand creates the version subcommand
func buildVersionCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}

	return cmd
}

// parseVars reads "k=v" pairs separated by comma or ampersand, pairs missing a key or value are skipped
func parseVars(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	vars := make(map[string]string)

	for _, item := range varSeparator.Split(raw, -1) {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !ok || key == "" || value == "" {
			continue
		}

		vars[key] = value
	}

	return vars
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var items []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
