// Package pathutil normalizes, joins and resolves paths in the two namespaces
// droidxfer works with: the host filesystem and the device's forward-slash
// filesystem.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveAbsolutePath turns a host path typed on the command line into an
// absolute path with symlinks resolved. The path need not exist: the
// deepest existing ancestor is resolved and the missing tail re-appended,
// so a pull destination under a symlinked directory resolves through it.
// The empty path is the working directory.
func ResolveAbsolutePath(p string) (string, error) {
	if p == "" {
		return os.Getwd()
	}

	p, err := expandHome(NormalizeForHost(p))
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	existing, missing := splitExisting(abs)
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		resolved = existing
	}
	return filepath.Join(append([]string{resolved}, missing...)...), nil
}

// expandHome replaces a leading "~" or "~/" with the home directory.
// "~user" forms are left alone.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// splitExisting walks up from abs with hostParent until it reaches a path
// that exists. It returns that ancestor and the missing components below
// it, outermost first. When nothing exists up to the root, abs is returned
// whole.
func splitExisting(abs string) (string, []string) {
	var missing []string
	current := abs
	for {
		if _, err := os.Stat(current); err == nil {
			return current, missing
		}
		parent, ok := hostParent(current)
		if !ok {
			return abs, nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}
