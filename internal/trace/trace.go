package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ResolutionTrace is the canonical, deterministic record of one interpreter
// resolution and dispatch.
//
// Determinism constraints:
//   - No timestamps, durations, or process IDs.
//   - No error strings; outcomes are stable kind codes.
//   - Events appear in resolution order. That order is itself deterministic
//     because the candidate list is walked in a fixed order and probing is
//     strictly sequential, so no sorting pass is needed.
//
// The trace is observational only and must never affect resolution behavior.
// Byte-for-byte stability of the canonical encoding is required.
type ResolutionTrace struct {
	MinVersion string
	Events     []Event
}

// EventKind is the stable discriminator for Event. The string values are
// part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	// Ambient interpreter verdicts. Exactly one of these opens every trace.
	EventAmbientAccepted EventKind = "AmbientAccepted"
	EventAmbientRejected EventKind = "AmbientRejected"
	EventAmbientMissing  EventKind = "AmbientMissing"

	// Candidate walk outcomes, one per visited candidate.
	EventCandidateUnresolved EventKind = "CandidateUnresolved"
	EventCandidateSelf       EventKind = "CandidateSelf"
	EventCandidateRejected   EventKind = "CandidateRejected"
	EventCandidateSelected   EventKind = "CandidateSelected"

	// Terminal outcomes.
	EventResolutionFailed    EventKind = "ResolutionFailed"
	EventGeneratorDispatched EventKind = "GeneratorDispatched"
)

// Event is a single logical step of resolution.
//
// Optional fields are set deterministically per kind:
//   - Name is the candidate name as listed (e.g. "python3.11"); required
//     for all Candidate* kinds.
//   - Path is the resolved executable path, when one exists.
//   - Version is the reported major.minor, when the interpreter was asked.
type Event struct {
	Kind    EventKind
	Name    string
	Path    string
	Version string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ResolutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.MinVersion == "" {
		return errors.New("minVersion is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if isCandidateEvent(e.Kind) && e.Name == "" {
			return fmt.Errorf("events[%d].name is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

func isCandidateEvent(kind EventKind) bool {
	switch kind {
	case EventCandidateUnresolved, EventCandidateSelf, EventCandidateRejected, EventCandidateSelected:
		return true
	default:
		return false
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
func (t ResolutionTrace) CanonicalJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&t)
}

// Hash returns the deterministic trace hash (sha256 hex) of the canonical
// JSON bytes.
func (t ResolutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON ensures canonical field ordering and omission rules.
func (t ResolutionTrace) MarshalJSON() ([]byte, error) {
	if t.MinVersion == "" {
		return nil, errors.New("minVersion is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"minVersion\":")
	mv, _ := json.Marshal(t.MinVersion)
	buf.Write(mv)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON ensures canonical field ordering and omission of empty
// optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	// kind (always first)
	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	if e.Name != "" {
		buf.WriteByte(',')
		buf.WriteString("\"name\":")
		nb, _ := json.Marshal(e.Name)
		buf.Write(nb)
	}

	if e.Path != "" {
		buf.WriteByte(',')
		buf.WriteString("\"path\":")
		pb, _ := json.Marshal(e.Path)
		buf.Write(pb)
	}

	if e.Version != "" {
		buf.WriteByte(',')
		buf.WriteString("\"version\":")
		vb, _ := json.Marshal(e.Version)
		buf.Write(vb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
