// Package dispatch runs the type generator under a resolved interpreter.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultScript is the generator invoked in check mode.
const DefaultScript = "generate_mcp_types.py"

// CheckFlag asks the generator to verify its generated output instead of
// rewriting it. Its semantics belong entirely to the generator.
const CheckFlag = "--check"

// Dispatcher spawns the generator script under a chosen interpreter and
// forwards its exit status untouched.
//
// Both the script path and the child's working directory are anchored to
// ScriptDir, so the generator resolves its own relative resources the same
// way regardless of where the launcher was invoked from.
type Dispatcher struct {
	// ScriptDir is the directory containing the generator script. It is
	// also the child's working directory.
	ScriptDir string

	// Script is the generator file name within ScriptDir. Empty selects
	// DefaultScript.
	Script string

	// Child streams. The generator's output is passed through, never
	// captured or filtered.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewDispatcher anchors the generator next to this executable and wires
// the child to the process's own standard streams.
func NewDispatcher() (*Dispatcher, error) {
	dir, err := ToolDir()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		ScriptDir: dir,
		Script:    DefaultScript,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}, nil
}

// ToolDir returns the directory containing the running executable, with
// symlinks resolved, so the generator is found next to the real binary
// rather than next to a symlink to it.
func ToolDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	real, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	return filepath.Dir(real), nil
}

// Run invokes `<interpreter> <ScriptDir>/<Script> --check` and returns the
// child's exit code verbatim.
//
// A nonzero generator exit is not an error here: (code, nil) is the normal
// outcome either way, and the caller forwards the code unmodified. The
// error return is reserved for spawn failures, where no child exit code
// exists.
func (d *Dispatcher) Run(ctx context.Context, interpreter string) (int, error) {
	if interpreter == "" {
		return 0, fmt.Errorf("interpreter path is empty")
	}
	if d.ScriptDir == "" {
		return 0, fmt.Errorf("script dir is empty")
	}
	script := d.Script
	if script == "" {
		script = DefaultScript
	}

	cmd := exec.CommandContext(ctx, interpreter, filepath.Join(d.ScriptDir, script), CheckFlag)
	cmd.Dir = d.ScriptDir
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("starting generator: %w", err)
}
