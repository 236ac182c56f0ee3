package cli

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseInvocation_ZeroArgsIsCanonical(t *testing.T) {
	inv, err := ParseInvocation(nil)
	if err != nil {
		t.Fatalf("ParseInvocation: %v", err)
	}
	if inv != (Invocation{}) {
		t.Errorf("zero-argument launch should produce the zero invocation, got %+v", inv)
	}
}

func TestParseInvocation_UnknownFlag(t *testing.T) {
	_, err := ParseInvocation([]string{"--bogus"})
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want *InvocationError", err)
	}
	if invErr.ExitCode != ExitInvalidInvocation {
		t.Errorf("exit code = %d, want %d", invErr.ExitCode, ExitInvalidInvocation)
	}
}

func TestParseInvocation_PositionalArgsRejected(t *testing.T) {
	_, err := ParseInvocation([]string{"extra"})
	if ExitCode(err) != ExitInvalidInvocation {
		t.Errorf("positional arguments should be an invalid invocation, got %v", err)
	}
}

func TestParseInvocation_ScriptDirMustBeAbsolute(t *testing.T) {
	_, err := ParseInvocation([]string{"-script-dir", "relative/dir"})
	if ExitCode(err) != ExitInvalidInvocation {
		t.Errorf("relative --script-dir should be rejected, got %v", err)
	}

	abs := t.TempDir()
	inv, err := ParseInvocation([]string{"-script-dir", abs})
	if err != nil {
		t.Fatalf("ParseInvocation: %v", err)
	}
	if inv.ScriptDir != filepath.Clean(abs) {
		t.Errorf("ScriptDir = %q, want %q", inv.ScriptDir, abs)
	}
}

func TestParseInvocation_PathsAreCleaned(t *testing.T) {
	inv, err := ParseInvocation([]string{"-trace", "out//trace.json", "-config", "./cfg.yml"})
	if err != nil {
		t.Fatalf("ParseInvocation: %v", err)
	}
	if inv.TracePath != filepath.Clean("out//trace.json") {
		t.Errorf("TracePath = %q", inv.TracePath)
	}
	if inv.ConfigPath != "cfg.yml" {
		t.Errorf("ConfigPath = %q", inv.ConfigPath)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != ExitSuccess {
		t.Error("nil error should map to success")
	}
	if ExitCode(errors.New("boom")) != ExitInternalError {
		t.Error("unknown errors should map to internal error")
	}
	if ExitCode(&InvocationError{ExitCode: ExitInvalidInvocation}) != ExitInvalidInvocation {
		t.Error("invocation errors should keep their code")
	}
}
