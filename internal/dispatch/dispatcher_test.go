package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeInterpreter records its working directory and arguments, then exits
// with the given code. It stands in for a resolved Python binary.
func fakeInterpreter(t *testing.T, dir string, exitCode int, outDir string) string {
	t.Helper()
	body := fmt.Sprintf("#!/bin/sh\npwd > %q\nprintf '%%s\\n' \"$@\" > %q\nexit %d\n",
		outDir+"/cwd", outDir+"/args", exitCode)
	path := filepath.Join(dir, "python3.11")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write fake interpreter: %v", err)
	}
	return path
}

func newTestDispatcher(scriptDir string) *Dispatcher {
	return &Dispatcher{
		ScriptDir: scriptDir,
		Script:    DefaultScript,
		Stdout:    &bytes.Buffer{},
		Stderr:    &bytes.Buffer{},
	}
}

func TestRun_ForwardsExitCodeVerbatim(t *testing.T) {
	for _, code := range []int{0, 1, 7, 255} {
		scriptDir := t.TempDir()
		outDir := t.TempDir()
		interp := fakeInterpreter(t, t.TempDir(), code, outDir)

		got, err := newTestDispatcher(scriptDir).Run(context.Background(), interp)
		if err != nil {
			t.Fatalf("Run(exit %d): %v", code, err)
		}
		if got != code {
			t.Errorf("exit code = %d, want %d", got, code)
		}
	}
}

func TestRun_InvocationShape(t *testing.T) {
	scriptDir := t.TempDir()
	outDir := t.TempDir()
	interp := fakeInterpreter(t, t.TempDir(), 0, outDir)

	if _, err := newTestDispatcher(scriptDir).Run(context.Background(), interp); err != nil {
		t.Fatalf("Run: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(outDir, "args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	if len(lines) != 2 {
		t.Fatalf("argv = %q, want script path and --check", lines)
	}
	if lines[0] != filepath.Join(scriptDir, DefaultScript) {
		t.Errorf("argv[1] = %q, want generator path under the script dir", lines[0])
	}
	if lines[1] != CheckFlag {
		t.Errorf("argv[2] = %q, want %q", lines[1], CheckFlag)
	}

	cwd, err := os.ReadFile(filepath.Join(outDir, "cwd"))
	if err != nil {
		t.Fatalf("read cwd: %v", err)
	}
	gotCwd, _ := filepath.EvalSymlinks(strings.TrimSpace(string(cwd)))
	wantCwd, _ := filepath.EvalSymlinks(scriptDir)
	if gotCwd != wantCwd {
		t.Errorf("child cwd = %q, want %q", gotCwd, wantCwd)
	}
}

func TestRun_SpawnFailureIsAnError(t *testing.T) {
	scriptDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone")

	if _, err := newTestDispatcher(scriptDir).Run(context.Background(), missing); err == nil {
		t.Error("expected spawn failure for a missing interpreter")
	}
}

func TestRun_EmptyInterpreterRejected(t *testing.T) {
	if _, err := newTestDispatcher(t.TempDir()).Run(context.Background(), ""); err == nil {
		t.Error("expected error for empty interpreter path")
	}
}

func TestToolDir_IsAbsolute(t *testing.T) {
	dir, err := ToolDir()
	if err != nil {
		t.Fatalf("ToolDir: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ToolDir() = %q, want an absolute path", dir)
	}
}
