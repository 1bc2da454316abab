package aggregate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeIdentity maps a raw user identity (an email-like
// string) to a display name: the local part is split on ".",
// "_", and "-", each segment is title-cased, and the segments
// are joined with single spaces. Identities differing only by
// case or separator normalize to the same name, so
// "jane.doe@x" and "JANE_DOE@y" both become "Jane Doe".
func NormalizeIdentity(raw string) string {
	local, _, _ := strings.Cut(raw, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		parts[i] = titleCase(p)
	}
	return strings.Join(parts, " ")
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
