package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	ExitSuccess           = 0
	ExitNoInterpreter     = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Invocation is the canonicalized description of one launcher run.
//
// The zero-argument launch is the canonical form: every field is optional
// and an empty field selects the built-in behavior. The launcher itself
// consumes nothing else; the generator's own exit code is the product.
type Invocation struct {
	// ConfigPath is an explicit config file. Empty means "typegate.yml
	// next to the executable, if present".
	ConfigPath string

	// TracePath enables writing a resolution trace to this path.
	TracePath string

	// ScriptDir overrides the directory the generator script is anchored
	// to. Empty means the executable's own directory.
	ScriptDir string
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a canonical Invocation.
//
// The launcher accepts no positional arguments, and the only environment
// state the run will consult is the execution search path.
func ParseInvocation(args []string) (Invocation, error) {
	fs := flag.NewFlagSet("typegate", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var configPath string
	var tracePath string
	var scriptDir string

	fs.StringVar(&configPath, "config", "", "Launcher config file (optional).")
	fs.StringVar(&tracePath, "trace", "", "Resolution trace output path (optional).")
	fs.StringVar(&scriptDir, "script-dir", "", "Directory containing the generator script. Defaults to the executable's directory.")

	if err := fs.Parse(args); err != nil {
		// flag package returns errors like: "flag provided but not defined: -x"
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	inv := Invocation{}
	if strings.TrimSpace(configPath) != "" {
		inv.ConfigPath = filepath.Clean(configPath)
	}
	if strings.TrimSpace(tracePath) != "" {
		inv.TracePath = filepath.Clean(tracePath)
	}
	if strings.TrimSpace(scriptDir) != "" {
		clean := filepath.Clean(scriptDir)
		// Anchoring must not depend on the process current working
		// directory, so a relative override is rejected outright.
		if !filepath.IsAbs(clean) {
			return Invocation{}, invalidInvocationf("--script-dir must be an absolute path (got %q)", scriptDir)
		}
		inv.ScriptDir = clean
	}
	return inv, nil
}

// ExitCode extracts a semantic exit code from a ParseInvocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
