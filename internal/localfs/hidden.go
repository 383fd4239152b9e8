package localfs

import (
	"path/filepath"
	"strings"
)

// IsHidden reports whether the file or directory at path is hidden, judged
// by its base name.
func IsHidden(path string) bool {
	return IsHiddenName(filepath.Base(path))
}

// IsHiddenName reports whether a bare name is hidden (leading dot).
// "." and ".." are not considered hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
