package interp

import (
	"context"
	"errors"
	"fmt"

	"typegate/internal/trace"
)

// GenericName is the generic interpreter name. It closes every candidate
// list, doubles as the ambient interpreter name, and is the name the
// failure message tells operators to install under.
const GenericName = "python3"

// DefaultCandidates is the fixed probe order: most specific (newest) name
// first, the generic name last.
var DefaultCandidates = []string{"python3.12", "python3.11", "python3.10", GenericName}

// ErrNoQualifying reports that no interpreter on the search path satisfies
// the minimum version.
var ErrNoQualifying = errors.New("no qualifying interpreter")

// ResolveError wraps a resolution failure with an operator-facing message.
type ResolveError struct {
	Kind error
	Msg  string
}

func (e *ResolveError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *ResolveError) Unwrap() error { return e.Kind }

// Interpreter is the ambient interpreter: its executable path and the
// version it reported for itself.
type Interpreter struct {
	Path    string
	Version Version
}

// PathResolver resolves a candidate name on the execution search path.
// The production implementation wraps exec.LookPath; tests substitute a
// fixed name-to-path mapping so no real environment is touched.
type PathResolver interface {
	LookPath(name string) (string, error)
}

// Prober asks a candidate executable whether its own version meets min.
// A nil error means the candidate qualifies; any other outcome (spawn
// failure, nonzero exit) means it does not and the search continues.
type Prober interface {
	MeetsMinimum(ctx context.Context, path string, min Version) error
}

// AmbientSource reports the interpreter the launcher would use absent any
// search, if one exists. The launcher itself is not a Python process, so
// "the running interpreter" of the original script maps to whatever this
// source reports.
type AmbientSource interface {
	Ambient(ctx context.Context) (Interpreter, bool)
}

// Resolver picks the interpreter the generator will run under.
//
// Resolution is strictly sequential: at most one probe process exists at a
// time, and probing stops at the first qualifying candidate, so later
// candidates are never spawned.
type Resolver struct {
	Min        Version
	Candidates []string
	Paths      PathResolver
	Prober     Prober
	Ambient    AmbientSource
	Sink       trace.Sink
}

// NewResolver builds a production resolver for the given minimum version
// and candidate order. The generic (last) candidate doubles as the ambient
// interpreter name.
func NewResolver(min Version, candidates []string) *Resolver {
	return &Resolver{
		Min:        min,
		Candidates: candidates,
		Paths:      SystemPathResolver{},
		Prober:     CommandProber{},
		Ambient:    SystemAmbient{Name: genericCandidate(candidates), Paths: SystemPathResolver{}},
		Sink:       trace.NopSink{},
	}
}

// Resolve returns the absolute path of the first interpreter satisfying
// r.Min.
//
// Fast path: when the ambient interpreter already qualifies, its own path
// is returned immediately and no candidate is probed.
//
// Otherwise candidates are walked in order. A name that does not resolve
// on the search path is skipped without probing. A name that resolves to
// the ambient interpreter's own path is also skipped without probing: that
// interpreter is already known insufficient, and re-probing it would be
// wasted work. The first candidate whose probe exits 0 wins.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	ambientPath := ""
	if cur, ok := r.ambient(ctx); ok {
		ambientPath = cur.Path
		if cur.Version.AtLeast(r.Min) {
			trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventAmbientAccepted, Path: cur.Path, Version: cur.Version.String()})
			return cur.Path, nil
		}
		trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventAmbientRejected, Path: cur.Path, Version: cur.Version.String()})
	} else {
		trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventAmbientMissing})
	}

	for _, name := range r.Candidates {
		path, err := r.Paths.LookPath(name)
		if err != nil || path == "" {
			trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventCandidateUnresolved, Name: name})
			continue
		}
		if ambientPath != "" && path == ambientPath {
			trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventCandidateSelf, Name: name, Path: path})
			continue
		}
		if err := r.Prober.MeetsMinimum(ctx, path, r.Min); err != nil {
			trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventCandidateRejected, Name: name, Path: path})
			continue
		}
		trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventCandidateSelected, Name: name, Path: path})
		return path, nil
	}

	trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventResolutionFailed})
	return "", &ResolveError{
		Kind: ErrNoQualifying,
		Msg:  noQualifyingMessage(r.Min, genericCandidate(r.Candidates)),
	}
}

func (r *Resolver) ambient(ctx context.Context) (Interpreter, bool) {
	if r.Ambient == nil {
		return Interpreter{}, false
	}
	return r.Ambient.Ambient(ctx)
}

func genericCandidate(candidates []string) string {
	if len(candidates) == 0 {
		return GenericName
	}
	return candidates[len(candidates)-1]
}

func noQualifyingMessage(min Version, generic string) string {
	return fmt.Sprintf(
		"Python %s+ is required to generate MCP types. Install Python %s or newer and ensure it is discoverable as %s.",
		min, min, generic,
	)
}
