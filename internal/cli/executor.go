package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"typegate/internal/config"
	"typegate/internal/dispatch"
	"typegate/internal/interp"
	"typegate/internal/trace"
)

// Result carries the final exit code plus what was resolved, for callers
// (and tests) that want more than the code.
type Result struct {
	ExitCode    int
	Interpreter string
}

// Toolchain bundles the collaborators Execute wires together, so black-box
// tests can substitute fakes without touching PATH or a real Python
// installation. Nil fields select the production implementations.
type Toolchain struct {
	Resolver   *interp.Resolver
	Dispatcher *dispatch.Dispatcher
}

// Execute runs a canonical invocation with the production toolchain.
func Execute(ctx context.Context, inv Invocation) (Result, error) {
	return ExecuteWithToolchain(ctx, inv, Toolchain{})
}

// ExecuteWithToolchain resolves an interpreter and dispatches the
// generator, mapping every outcome to a semantic exit code.
//
// Responsibilities:
//   - Load the optional config before anything spawns.
//   - Initialize trace output before resolution and finalize it after,
//     even on failure or panic.
//   - Resolve before dispatch; a resolution failure terminates the run
//     with no generator spawn attempt.
//   - Forward the generator's exit code verbatim; only resolution failure
//     and spawn failure map to launcher-owned codes.
func ExecuteWithToolchain(ctx context.Context, inv Invocation, tc Toolchain) (res Result, execErr error) {
	res.ExitCode = ExitInternalError

	defer func() {
		if r := recover(); r != nil {
			res = Result{ExitCode: ExitInternalError}
			execErr = fmt.Errorf("panic: %v", r)
		}
	}()

	scriptDir := inv.ScriptDir
	if scriptDir == "" {
		dir, err := dispatch.ToolDir()
		if err != nil {
			return res, err
		}
		scriptDir = dir
	}

	configPath := inv.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(scriptDir, config.FileName)
	}
	cfg, _, err := config.Load(configPath)
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, err
	}

	recorder := trace.NewRecorder()
	writer, err := newTraceWriter(inv.TracePath, cfg.MinVersion.String())
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, err
	}
	defer func() {
		// Always finalize trace output, whatever the outcome.
		_ = writer.Finalize(recorder)
	}()

	resolver := tc.Resolver
	if resolver == nil {
		resolver = interp.NewResolver(cfg.MinVersion, cfg.Candidates)
	}
	resolver.Sink = recorder

	path, err := resolver.Resolve(ctx)
	if err != nil {
		if errors.Is(err, interp.ErrNoQualifying) {
			res.ExitCode = ExitNoInterpreter
			return res, err
		}
		return res, err
	}
	res.Interpreter = path

	dispatcher := tc.Dispatcher
	if dispatcher == nil {
		dispatcher = &dispatch.Dispatcher{
			ScriptDir: scriptDir,
			Script:    cfg.Script,
			Stdin:     os.Stdin,
			Stdout:    os.Stdout,
			Stderr:    os.Stderr,
		}
	}

	trace.SafeRecord(recorder, trace.Event{Kind: trace.EventGeneratorDispatched, Path: path})
	code, err := dispatcher.Run(ctx, path)
	if err != nil {
		return res, err
	}
	res.ExitCode = code
	return res, nil
}

// traceFileWriter reserves the trace destination eagerly so even a panic
// results in a valid (if empty) trace artifact. Alongside the trace it
// records the sha256 identity of the canonical bytes in a `.sha256`
// sidecar, so consumers can verify the artifact without reparsing it.
type traceFileWriter struct {
	enabled    bool
	path       string
	minVersion string
}

func newTraceWriter(path, minVersion string) (*traceFileWriter, error) {
	if path == "" {
		return &traceFileWriter{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	w := &traceFileWriter{enabled: true, path: path, minVersion: minVersion}
	return w, w.write(trace.ResolutionTrace{MinVersion: minVersion})
}

func (w *traceFileWriter) Finalize(rec *trace.Recorder) error {
	if w == nil || !w.enabled {
		return nil
	}
	return w.write(rec.Trace(w.minVersion))
}

func (w *traceFileWriter) write(t trace.ResolutionTrace) error {
	b, err := t.CanonicalJSON()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(w.path, b, 0o644); err != nil {
		return err
	}
	return writeFileAtomic(w.path+".sha256", []byte(trace.ComputeTraceHash(b)+"\n"), 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
