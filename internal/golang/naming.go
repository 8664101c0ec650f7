package golang

import (
	"strings"
	"unicode"
)

// Sanitize turns an arbitrary label into an identifier. The label is split on
// every character outside [A-Za-z0-9], the first letter of each piece is
// upper-cased and the pieces are joined. An empty result, or one that starts
// with a digit, gets a leading underscore.
//
// The mapping is a pure function of its input; callers that need uniqueness
// must check for collisions themselves.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label) + 1)
	upperNext := true
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isIdentByte(c) {
			upperNext = true
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		b.WriteByte(c)
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		return "_" + out
	}
	return out
}

// Identifier sanitizes label and escapes the result if it is a keyword.
func Identifier(label string) string {
	return EscapeKeyword(Sanitize(label))
}

// IsLossless reports whether Sanitize maps label onto itself, which means no
// information was dropped and two distinct lossless labels never collide.
func IsLossless(label string) bool {
	return Sanitize(label) == label
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Unexported lower-cases the first letter of an identifier.
func Unexported(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// EscapeKeyword appends an underscore to identifiers that spell a Go keyword,
// ignoring case.
func EscapeKeyword(s string) string {
	lower := strings.ToLower(s)
	if goKeywords[lower] {
		return s + "_"
	}
	return s
}
