// Package interp locates a Python interpreter able to run the type generator.
package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a two-component interpreter version, ordered component-wise
// (major first, then minor).
type Version struct {
	Major int
	Minor int
}

// MinGeneratorVersion is the oldest interpreter the generator script accepts.
var MinGeneratorVersion = Version{Major: 3, Minor: 10}

// ParseVersion parses a dotted version string such as "3.11" or "3.11.4"
// into a Version. Components beyond major.minor are ignored.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid major component in %q", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Version{}, fmt.Errorf("invalid minor component in %q", s)
	}
	return Version{Major: major, Minor: minor}, nil
}

// AtLeast reports whether v >= min. This is the whole version gate: an
// interpreter qualifies iff its own (major, minor) is at or above the
// minimum.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	return v.Minor >= min.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
