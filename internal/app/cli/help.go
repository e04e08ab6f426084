package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"lesswatch/internal/config"
)

type helpLine struct {
	name string
	desc string
}

var (
	usageLines = []helpLine{
		{"lesswatch <entry> <output> [options]", "Watch and rebuild entry into output"},
		{"lesswatch -f <config>", "Read options from a config file"},
		{"lesswatch init", fmt.Sprintf("Generate %s template", config.ConfigFile)},
		{"lesswatch version", "Show version"},
	}

	optionLines = []helpLine{
		{"-d, --watch-dir <dir>", `Directory to watch (default "./")`},
		{"-f, --config <file>", "Config file, its paths are relative to the file"},
		{"--rewrite-urls <mode>", "Less rewrite-urls option: off, local or all"},
		{"--global-vars <k=v,...>", "Less global variables"},
		{"--modify-vars <k=v,...>", "Less modify variables"},
		{"--include-path <dir>", "Extra include path for imports, repeatable"},
		{"--ext <ext,...>", "Extra file extensions to watch"},
		{"--build", "Build once without watching"},
		{"--delay <ms>", "Milliseconds to wait before building (default 0)"},
		{"-q, --quiet", "Disable all logs except errors"},
		{"--compress", "Minify the output"},
		{"--log-level <level>", "Diagnostic log level"},
		{"-v, --version", "Show version information"},
		{"-h, --help", "Show help information"},
	}

	exampleLines = []helpLine{
		{"lesswatch src/index.less dist/bundle.css -d src --rewrite-urls all", ""},
		{"lesswatch --config ./lesswatch.yaml", ""},
		{"lesswatch src/index.less dist/bundle.css --global-vars prefix=my-ui", ""},
	}
)

// renderHelp renders the full help screen
func renderHelp() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderTitle(),
		sectionHeader.Render("Usage:"),
		renderLines(usageLines, commandName),
		sectionHeader.Render("Options:"),
		renderLines(optionLines, commandName),
		sectionHeader.Render("Extensions:"),
		bodySmall.Render("  Base extensions are .less, .css, .svg, .png, .jpg, .jpeg, .gif, .webp and .bmp"),
		sectionHeader.Render("Examples:"),
		renderLines(exampleLines, exampleCode),
	) + "\n"
}

func renderLines(lines []helpLine, style lipgloss.Style) string {
	width := 0
	for _, l := range lines {
		width = max(width, lipgloss.Width(l.name))
	}

	rendered := make([]string, 0, len(lines))

	for _, l := range lines {
		name := style.Width(width).Render(l.name)
		rendered = append(rendered, bodyMedium.Render("  "+name+"  "+l.desc))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
