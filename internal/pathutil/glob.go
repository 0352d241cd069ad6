package pathutil

import "path/filepath"

// Match reports whether canonical path name matches the shell glob
// pattern, after canonicalizing both. Used for vanilla-archive-name
// lists and user override path lists, which are authored with mixed
// case and forward slashes.
func Match(pattern, name string) (bool, error) {
	return filepath.Match(Canonicalize(pattern), Canonicalize(name))
}
