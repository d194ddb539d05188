// Package phone models carrier-specific mobile wallet numbers. A number is
// stored canonically (digits only) and rendered for display by grouping the
// digits with single spaces. Canonicalize(Format(n)) always round-trips.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty   = errors.New("phone number is empty")
	ErrInvalid = errors.New("phone number is invalid")
)

// Rule describes the accepted shape of a subscriber number for one carrier:
// a literal digit prefix, the total digit count, and the digit groups used
// when formatting for display.
type Rule struct {
	Prefix string
	Length int
	Groups []int
}

// Number is a canonical, validated subscriber number (digits only).
type Number string

func (n Number) String() string {
	return string(n)
}

// Canonicalize strips everything that is not an ASCII digit.
func Canonicalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Parse canonicalizes raw input and validates it against the rule.
func (r Rule) Parse(raw string) (Number, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmpty
	}
	clean := Canonicalize(raw)
	if len(clean) != r.Length || !strings.HasPrefix(clean, r.Prefix) {
		return "", ErrInvalid
	}
	return Number(clean), nil
}

// Format renders a canonical number with single spaces between digit groups.
// Without explicit groups the layout is prefix, three digits, remainder.
func (r Rule) Format(n Number) string {
	digits := string(n)
	groups := r.Groups
	if len(groups) == 0 {
		groups = r.defaultGroups()
	}

	parts := make([]string, 0, len(groups))
	offset := 0
	for _, size := range groups {
		if offset >= len(digits) || size <= 0 {
			break
		}
		end := offset + size
		if end > len(digits) {
			end = len(digits)
		}
		parts = append(parts, digits[offset:end])
		offset = end
	}
	if offset < len(digits) {
		parts = append(parts, digits[offset:])
	}
	return strings.Join(parts, " ")
}

// Describe returns a human-readable summary of the rule, e.g.
// "0100XXXXXXX (11 digits starting with 0100)".
func (r Rule) Describe() string {
	placeholder := r.Prefix + strings.Repeat("X", r.Length-len(r.Prefix))
	return fmt.Sprintf("%s (%d digits starting with %s)", placeholder, r.Length, r.Prefix)
}

func (r Rule) defaultGroups() []int {
	prefixLen := len(r.Prefix)
	rest := r.Length - prefixLen
	if rest <= 3 {
		return []int{prefixLen, rest}
	}
	return []int{prefixLen, 3, rest - 3}
}
