package macro

import (
	"iter"
	"strings"
)

// Family is a platform family. It selects the separator used to join path
// segments.
type Family int

const (
	// FamilyUnix joins segments with '/'. Every non-Windows host uses it.
	FamilyUnix Family = iota

	// FamilyWindows joins segments with '\'.
	FamilyWindows
)

// String returns the lowercase name of the family.
func (f Family) String() string {
	switch f {
	case FamilyUnix:
		return "unix"
	case FamilyWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// Separator returns the path separator of the family.
func (f Family) Separator() string {
	if f == FamilyWindows {
		return `\`
	}

	return "/"
}

// Families returns an iterator over the names of all families.
func Families() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Family{FamilyUnix, FamilyWindows} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFamily parses a family name. Unrecognized names yield [HostFamily].
func ParseFamily(s string) Family {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows":
		return FamilyWindows
	case "unix":
		return FamilyUnix
	default:
		return HostFamily
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	*f = ParseFamily(string(text))

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) { return []byte(f.String()), nil }
