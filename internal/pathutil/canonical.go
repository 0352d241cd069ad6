// Package pathutil implements C1: case-insensitive lowercase
// canonicalization, UTF-8/UTF-16 conversion, and glob matching used as
// the key space for every map in the patcher (spec.md §3 "Canonical
// path").
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/modpatch/pgpatcher/internal/core"
)

// Canonicalize converts p into the lowercase-ASCII, backslash-separated
// key used by every map lookup in the system. Only the ASCII subset is
// canonicalized: non-ASCII bytes are left as-is here (rejecting them is
// the caller's job via IsASCII, because the rejection is contextual —
// non-ASCII in a texture slot is a hard error per spec.md §3, but a
// loose-file path containing non-ASCII is not inherently wrong).
func Canonicalize(p string) string {
	p = strings.ReplaceAll(p, "/", "\\")
	p = strings.Trim(p, "\\")
	return strings.Map(lowerASCII, p)
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// IsASCII reports whether every byte in s is in the 7-bit ASCII range.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}

// RequireASCII returns core.ErrNonASCIIPath when s contains any non-ASCII
// byte. Used when validating NIF texture-slot strings (spec.md §3, §9
// design note 4): the slot-write path enforces lowercase-ASCII identity,
// but reads elsewhere in the VFS may carry UTF-8.
func RequireASCII(s string) error {
	if !IsASCII(s) {
		return core.ErrNonASCIIPath
	}
	return nil
}

// Ext returns the lowercase extension of p (without the leading dot),
// using backslash-or-forward-slash-agnostic canonical semantics.
func Ext(p string) string {
	e := filepath.Ext(p)
	e = strings.TrimPrefix(e, ".")
	return strings.ToLower(e)
}

// Join canonicalizes the concatenation of dir and rest with a single
// backslash separator, collapsing any duplicate separators produced by
// either argument already ending/starting with one.
func Join(dir, rest string) string {
	dir = strings.TrimRight(dir, "\\/")
	rest = strings.TrimLeft(rest, "\\/")
	if dir == "" {
		return Canonicalize(rest)
	}
	return Canonicalize(dir + "\\" + rest)
}

// Dir returns the canonical parent directory of p (everything before the
// final backslash), or "" if p has no directory component.
func Dir(p string) string {
	p = Canonicalize(p)
	idx := strings.LastIndexByte(p, '\\')
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// Base returns the final path component of p.
func Base(p string) string {
	p = Canonicalize(p)
	idx := strings.LastIndexByte(p, '\\')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// Stem returns Base(p) with its extension removed.
func Stem(p string) string {
	b := Base(p)
	if idx := strings.LastIndexByte(b, '.'); idx >= 0 {
		return b[:idx]
	}
	return b
}
