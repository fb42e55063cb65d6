package reorganize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a team or photo value cannot be used as a
// single path segment under the current Policy.
var ErrInvalidName = errors.New("invalid path segment")

// NameError describes a team or photo value rejected by PolicyReject.
type NameError struct {
	Field  string
	Value  string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%v: %s %q %s", ErrInvalidName, e.Field, e.Value, e.Reason)
}

func (e *NameError) Unwrap() error {
	return ErrInvalidName
}

// Policy decides what happens to values that are not a single path segment.
type Policy int

const (
	// PolicyReject fails the row.
	PolicyReject Policy = iota
	// PolicySanitize rewrites the value into a safe segment.
	PolicySanitize
)

func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicySanitize:
		return "sanitize"
	default:
		return "unknown"
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "sanitize":
		return PolicySanitize, nil
	default:
		return PolicyReject, fmt.Errorf("unknown name policy %q", s)
	}
}

func isSeparator(r rune) bool {
	return r == '/' || r == os.PathSeparator || r == 0
}

// segment validates or sanitizes an already trimmed value. Empty values pass
// through unchanged; callers give them their own meaning.
func segment(field, value string, policy Policy) (string, error) {
	if value == "" {
		return value, nil
	}

	if policy == PolicySanitize {
		v := norm.NFC.String(value)
		v = strings.Map(func(r rune) rune {
			if isSeparator(r) || r == '\\' {
				return '_'
			}
			return r
		}, v)
		if v == "." || v == ".." {
			v = "_"
		}
		return v, nil
	}

	if value == "." || value == ".." {
		return "", &NameError{Field: field, Value: value, Reason: "refers to a directory, not a name"}
	}
	if strings.IndexFunc(value, isSeparator) >= 0 {
		return "", &NameError{Field: field, Value: value, Reason: "contains a path separator"}
	}
	return value, nil
}

// sourcePath locates a photo as written in the roster. Under sanitize the
// raw value may still hold separators, so it must stay below dir.
func sourcePath(dir, photo string) (string, error) {
	if strings.ContainsRune(photo, 0) || !filepath.IsLocal(photo) {
		return "", &NameError{Field: "photo", Value: photo, Reason: "does not name a file inside the photo directory"}
	}
	return filepath.Join(dir, photo), nil
}
