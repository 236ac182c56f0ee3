// Package config loads the optional launcher configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"typegate/internal/dispatch"
	"typegate/internal/interp"
)

// FileName is looked for next to the executable when no explicit config
// path is given.
const FileName = "typegate.yml"

// Config is the resolved launcher configuration. It is read once at
// startup and immutable for the process lifetime.
type Config struct {
	MinVersion interp.Version
	Candidates []string
	Script     string
}

// Default returns the built-in configuration. With no config file present,
// launcher behavior is exactly these constants.
func Default() Config {
	return Config{
		MinVersion: interp.MinGeneratorVersion,
		Candidates: append([]string(nil), interp.DefaultCandidates...),
		Script:     dispatch.DefaultScript,
	}
}

// fileSchema is the on-disk YAML shape. All fields are optional; absent
// fields keep their defaults.
type fileSchema struct {
	MinVersion string   `yaml:"min_version"`
	Candidates []string `yaml:"candidates"`
	Script     string   `yaml:"script"`
}

// ValidationError aggregates configuration problems so operators see them
// all at once instead of fixing one per run.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: invalid configuration", e.Path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: invalid configuration:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads path and merges its fields over the defaults.
//
// A missing file is not an error: the defaults are returned and found is
// false. Malformed YAML and invalid field values are errors; invalid
// values are aggregated into a single ValidationError.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return Config{}, false, fmt.Errorf("reading config: %w", err)
	}

	var raw fileSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	var issues []string
	if raw.MinVersion != "" {
		v, verr := interp.ParseVersion(raw.MinVersion)
		if verr != nil {
			issues = append(issues, fmt.Sprintf("min_version: %v", verr))
		} else {
			cfg.MinVersion = v
		}
	}
	if len(raw.Candidates) > 0 {
		for i, name := range raw.Candidates {
			if strings.TrimSpace(name) == "" {
				issues = append(issues, fmt.Sprintf("candidates[%d] is empty", i))
			}
		}
		// The failure message instructs operators to install under the
		// generic name, so the list must actually end with it.
		if last := raw.Candidates[len(raw.Candidates)-1]; strings.TrimSpace(last) != "" && last != interp.GenericName {
			issues = append(issues, fmt.Sprintf("candidates must end with the generic name %q (got %q)", interp.GenericName, last))
		}
		cfg.Candidates = append([]string(nil), raw.Candidates...)
	}
	if raw.Script != "" {
		// The script is always anchored under the tool directory; a bare
		// file name keeps that anchoring honest.
		if strings.ContainsAny(raw.Script, `/\`) {
			issues = append(issues, fmt.Sprintf("script %q must be a bare file name", raw.Script))
		} else {
			cfg.Script = raw.Script
		}
	}

	if len(issues) > 0 {
		return Config{}, false, &ValidationError{Path: path, Issues: issues}
	}
	return cfg, true, nil
}
