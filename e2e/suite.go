package e2e

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

// lockedBuffer is a thread-safe bytes.Buffer for capturing process output
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer with mutex protection
func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// String returns the buffer contents with mutex protection
func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// Runner manages a lesswatch process for e2e tests
type Runner struct {
	t       *testing.T
	bin     string
	cmd     *exec.Cmd
	stdout  *lockedBuffer
	stderr  *lockedBuffer
	workDir string
}

// NewRunner creates a runner working in a fresh project directory, the test is skipped without a binary
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	bin := os.Getenv("LESSWATCH_BIN")
	if bin == "" {
		bin = "lesswatch"
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		t.Skipf("lesswatch binary not available: %v", err)
	}

	return &Runner{
		t:       t,
		bin:     path,
		workDir: t.TempDir(),
		stdout:  &lockedBuffer{},
		stderr:  &lockedBuffer{},
	}
}

// WriteFile creates or replaces a file below the project directory
func (r *Runner) WriteFile(path, content string) {
	r.t.Helper()

	fullPath := filepath.Join(r.workDir, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		r.t.Fatalf("failed to create directory: %v", err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write file: %v", err)
	}
}

// ReadFile returns the content of a project file, empty when missing
func (r *Runner) ReadFile(path string) string {
	data, err := os.ReadFile(filepath.Join(r.workDir, path))
	if err != nil {
		return ""
	}

	return string(data)
}

// Start launches lesswatch with the given arguments
func (r *Runner) Start(args ...string) error {
	r.cmd = exec.Command(r.bin, args...)
	r.cmd.Dir = r.workDir
	r.cmd.Stdout = r.stdout
	r.cmd.Stderr = r.stderr

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start lesswatch: %w", err)
	}

	return nil
}

// Run executes lesswatch to completion and returns its exit code
func (r *Runner) Run(args ...string) (int, error) {
	if err := r.Start(args...); err != nil {
		return -1, err
	}

	err := r.cmd.Wait()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	if err != nil {
		return -1, err
	}

	return 0, nil
}

// Stop sends SIGTERM and waits for graceful shutdown
func (r *Runner) Stop() error {
	if r.cmd == nil || r.cmd.Process == nil || r.cmd.ProcessState != nil {
		return nil
	}

	if err := r.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	done := make(chan error, 1)

	go func() {
		done <- r.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(10 * time.Second):
		r.cmd.Process.Kill()
		<-done

		return fmt.Errorf("process did not exit gracefully, killed")
	}
}

// WaitForLog blocks until pattern appears in stdout or timeout
func (r *Runner) WaitForLog(pattern string, timeout time.Duration) error {
	return r.WaitForCount(pattern, 1, timeout)
}

// WaitForCount blocks until pattern appears count times in stdout or timeout
func (r *Runner) WaitForCount(pattern string, count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for log pattern %q\nOutput:\n%s\nStderr:\n%s", pattern, r.Output(), r.Stderr())
		case <-ticker.C:
			if strings.Count(r.Output(), pattern) >= count {
				return nil
			}
		}
	}
}

// Output returns current stdout content
func (r *Runner) Output() string {
	return r.stdout.String()
}

// Stderr returns current stderr content
func (r *Runner) Stderr() string {
	return r.stderr.String()
}

// ExitCode returns process exit code (after Stop)
func (r *Runner) ExitCode() int {
	if r.cmd == nil || r.cmd.ProcessState == nil {
		return -1
	}

	return r.cmd.ProcessState.ExitCode()
}
