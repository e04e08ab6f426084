package e2e

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(r *Runner) {
	r.WriteFile("src/index.less", "@import \"colors\";\n.button { color: @primary; }\n")
	r.WriteFile("src/colors.less", "@primary: red;\n")
}

func Test_Build_WritesOutput(t *testing.T) {
	runner := NewRunner(t)
	writeProject(runner)

	exitCode, err := runner.Run("src/index.less", "dist/bundle.css", "--build")
	require.NoError(t, err)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, runner.ReadFile("dist/bundle.css"), "color: red;")
	assert.Contains(t, runner.Output(), "Compiled to dist/bundle.css (initial build)")
	assert.Contains(t, runner.Output(), "Build succeeded")
	assert.NotContains(t, runner.Output(), "Watching")
}

func Test_Build_ReportsCompileError(t *testing.T) {
	runner := NewRunner(t)
	runner.WriteFile("src/index.less", ".button { color: @missing; }\n")

	exitCode, err := runner.Run("src/index.less", "dist/bundle.css", "--build")
	require.NoError(t, err)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, runner.Stderr(), "Error: variable @missing is undefined")
	assert.NotContains(t, runner.Output(), "Build succeeded")
}

func Test_MissingEntry(t *testing.T) {
	runner := NewRunner(t)

	exitCode, err := runner.Run("--build")
	require.NoError(t, err)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, runner.Stderr(), "no entry file specified")
}

func Test_Watch_RebuildsOnImportChange(t *testing.T) {
	runner := NewRunner(t)
	writeProject(runner)

	defer runner.Stop()

	err := runner.Start("src/index.less", "dist/bundle.css", "-d", "src")
	require.NoError(t, err)

	err = runner.WaitForLog("Watching src", 10*time.Second)
	require.NoError(t, err)

	err = runner.WaitForLog("(initial build)", 10*time.Second)
	require.NoError(t, err)

	runner.WriteFile("src/colors.less", "@primary: blue;\n")

	err = runner.WaitForLog("(change src/colors.less)", 10*time.Second)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return strings.Contains(runner.ReadFile("dist/bundle.css"), "color: blue;")
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, runner.Stop())
	assert.Equal(t, 0, runner.ExitCode())
}

func Test_Watch_IgnoresUnwatchedExtensions(t *testing.T) {
	runner := NewRunner(t)
	writeProject(runner)

	defer runner.Stop()

	err := runner.Start("src/index.less", "dist/bundle.css", "-d", "src", "--delay", "100")
	require.NoError(t, err)

	err = runner.WaitForLog("(initial build)", 10*time.Second)
	require.NoError(t, err)

	runner.WriteFile("src/notes.txt", "ignored")
	runner.WriteFile("src/index.less", "@import \"colors\";\n.button { color: @primary; margin: 0; }\n")

	err = runner.WaitForCount("Compiled to", 2, 10*time.Second)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(runner.Output()), "\n")
	last := lines[len(lines)-1]

	assert.Contains(t, last, "src/index.less")
	assert.NotContains(t, runner.Output(), "notes.txt")
}
