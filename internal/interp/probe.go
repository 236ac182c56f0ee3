package interp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SystemPathResolver resolves names on the real execution search path.
type SystemPathResolver struct{}

func (SystemPathResolver) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// CommandProber spawns the candidate with an inline self-check so the
// candidate itself decides whether it qualifies. Asking the interpreter to
// evaluate the check is the only portable way to learn a foreign
// executable's version compatibility: no version-string formats need to be
// understood, only the exit status.
type CommandProber struct{}

func (CommandProber) MeetsMinimum(ctx context.Context, path string, min Version) error {
	check := fmt.Sprintf("import sys; exit(0 if sys.version_info >= (%d, %d) else 1)", min.Major, min.Minor)
	if err := exec.CommandContext(ctx, path, "-c", check).Run(); err != nil {
		return fmt.Errorf("probing %s: %w", path, err)
	}
	return nil
}

// SystemAmbient treats the generic candidate on the search path as the
// ambient interpreter and asks it for its own major.minor with a single
// introspection spawn. Any failure along the way means "no ambient
// interpreter", which sends the resolver into the full candidate walk.
type SystemAmbient struct {
	Name  string
	Paths PathResolver
}

func (a SystemAmbient) Ambient(ctx context.Context) (Interpreter, bool) {
	if a.Name == "" || a.Paths == nil {
		return Interpreter{}, false
	}
	path, err := a.Paths.LookPath(a.Name)
	if err != nil || path == "" {
		return Interpreter{}, false
	}
	query := `import sys; print("%d.%d" % sys.version_info[:2])`
	out, err := exec.CommandContext(ctx, path, "-c", query).Output()
	if err != nil {
		return Interpreter{}, false
	}
	v, err := ParseVersion(strings.TrimSpace(string(out)))
	if err != nil {
		return Interpreter{}, false
	}
	return Interpreter{Path: path, Version: v}, true
}
