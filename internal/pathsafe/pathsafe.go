// Package pathsafe turns user-supplied identifiers into filesystem-safe
// path segments. Every user id, database name, table name, and record id
// passes through Sanitize before it is joined into a path; this is the
// only defense against traversal and invalid filenames.
package pathsafe

import (
	"log/slog"
	"strings"
)

// MaxLen is the maximum length of a sanitized path segment.
const MaxLen = 80

// Sanitize keeps only alphanumerics, spaces, underscores, and hyphens,
// strips everything else, and truncates the result to MaxLen runes.
// It is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out != name {
		slog.Warn("sanitized unsafe identifier", "input", name, "output", out)
	}
	if runes := []rune(out); len(runes) > MaxLen {
		out = string(runes[:MaxLen])
		slog.Warn("truncated oversized identifier", "length", len(runes), "max", MaxLen)
	}
	return out
}

// SanitizeID is Sanitize with a fallback for identifiers that sanitize to
// nothing, so a record can never be addressed by an empty filename.
func SanitizeID(id string) string {
	out := Sanitize(id)
	if out == "" {
		return "unnamed"
	}
	return out
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '_' || r == '-':
		return true
	}
	return false
}
