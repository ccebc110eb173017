package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when a version string contains a
// non-numeric component.
var ErrInvalidFormat = errors.New("invalid version format")

// Quad is a 4-component semantic version (major, minor, patch, build).
// Ordering is lexicographic, most-significant component first.
type Quad struct {
	W, X, Y, Z int
	Raw        string
}

// Parse parses a version string into a Quad. A leading 'v' or 'V' is
// stripped, missing trailing components default to 0 and components
// past the fourth are ignored, so "1.2" and "v1.2.0.0" are the same
// version.
func Parse(s string) (Quad, error) {
	raw := strings.TrimSpace(s)
	trimmed := strings.TrimLeft(raw, "vV")
	if trimmed == "" {
		return Quad{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	parts := strings.Split(trimmed, ".")
	for len(parts) < 4 {
		parts = append(parts, "0")
	}
	parts = parts[:4]

	var nums [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Quad{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		nums[i] = n
	}
	return Quad{W: nums[0], X: nums[1], Y: nums[2], Z: nums[3], Raw: raw}, nil
}

// Compare returns -1 if q < other, 0 if equal, 1 if q > other.
func (q Quad) Compare(other Quad) int {
	pairs := [4][2]int{
		{q.W, other.W},
		{q.X, other.X},
		{q.Y, other.Y},
		{q.Z, other.Z},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			if p[0] < p[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether q orders strictly before other.
func (q Quad) Less(other Quad) bool { return q.Compare(other) < 0 }

// Canonical renders the fully expanded 4-component form, e.g. "1.2.0.0".
func (q Quad) Canonical() string {
	return fmt.Sprintf("%d.%d.%d.%d", q.W, q.X, q.Y, q.Z)
}

// Canonicalize parses s and returns its canonical 4-component form.
func Canonicalize(s string) (string, error) {
	q, err := Parse(s)
	if err != nil {
		return "", err
	}
	return q.Canonical(), nil
}
