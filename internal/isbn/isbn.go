// Package isbn validates ISBN-10 and ISBN-13 book identifiers.
//
// Hyphens and whitespace anywhere in the input are treated as formatting and
// dropped before the length-specific checksum is applied. Every function here
// is pure and safe for concurrent use.
package isbn

import (
	"strings"
)

// Variant is the identifier form selected by normalized length.
type Variant int

const (
	Unknown Variant = iota
	ISBN10
	ISBN13
)

func (v Variant) String() string {
	switch v {
	case ISBN10:
		return "ISBN-10"
	case ISBN13:
		return "ISBN-13"
	default:
		return "unknown"
	}
}

// Normalize removes every hyphen and whitespace character from raw.
// Nothing else is changed, including the case of a trailing 'X'.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || isSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// isSpace matches the ECMAScript WhiteSpace and LineTerminator sets. Unlike
// unicode.IsSpace it does not match U+0085 (NEL).
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00A0', '\u1680', '\u2028', '\u2029', '\u202F', '\u205F', '\u3000', '\uFEFF':
		return true
	}
	return r >= '\u2000' && r <= '\u200A'
}

// IsValid reports whether raw is a well-formed ISBN-10 or ISBN-13 once
// normalized.
func IsValid(raw string) bool {
	return Kind(raw) != Unknown
}

// Kind returns the variant of a valid identifier, or Unknown when raw does not
// pass validation.
func Kind(raw string) Variant {
	n := Normalize(raw)
	switch len(n) {
	case 10:
		if valid10(n) {
			return ISBN10
		}
	case 13:
		if valid13(n) {
			return ISBN13
		}
	}
	return Unknown
}

// Columns places the normalized identifier in the slot matching its variant.
// Both results are empty when raw is not valid.
func Columns(raw string) (isbn10, isbn13 string) {
	n := Normalize(raw)
	switch Kind(n) {
	case ISBN10:
		return n, ""
	case ISBN13:
		return "", n
	}
	return "", ""
}

func valid10(n string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		d, ok := digit(n[i])
		if !ok {
			return false
		}
		sum += d * (10 - i)
	}

	checksum := (11 - sum%11) % 11
	expected := byte('x')
	if checksum != 10 {
		expected = byte('0' + checksum)
	}
	return lower(n[9]) == expected
}

func valid13(n string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		d, ok := digit(n[i])
		if !ok {
			return false
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}

	last, ok := digit(n[12])
	if !ok {
		return false
	}
	return last == (10-sum%10)%10
}

func digit(c byte) (int, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
