// Package validation checks names and paths that arrive from the device or
// the command line before they are joined onto a destination root.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateEntryName checks a single directory-entry name as reported by a
// directory reader. Backslashes are legal in device names and are allowed;
// "/" , NUL, "." and ".." are not.
func ValidateEntryName(name string) error {
	switch name {
	case "":
		return fmt.Errorf("entry name cannot be empty")
	case ".", "..":
		return fmt.Errorf("entry name cannot be %q", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("entry name contains null byte: %q", name)
	}
	if strings.ContainsRune(name, '/') {
		return fmt.Errorf("entry name cannot contain '/': %s", name)
	}
	return nil
}

// ValidateFilename validates a user-supplied filename (not a full path),
// such as the name of a new folder. Both separators are rejected so the
// name means the same thing on the host and the device.
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %s", filename)
	}

	if strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, '\\') {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	// Separators are already rejected, so only the literal ".." can
	// traverse. Names like "data..v2.csv" are fine.
	if filename == ".." || filename == "." {
		return fmt.Errorf("filename cannot be '%s'", filename)
	}

	return nil
}

// ValidateRelativePath checks a planned relative path ("sub/b.txt"). The
// empty string is the source root itself and is valid.
func ValidateRelativePath(rel string) error {
	if rel == "" {
		return nil
	}
	if strings.HasPrefix(rel, "/") {
		return fmt.Errorf("relative path cannot be absolute: %s", rel)
	}
	for _, seg := range strings.Split(rel, "/") {
		if err := ValidateEntryName(seg); err != nil {
			return fmt.Errorf("invalid relative path %q: %w", rel, err)
		}
	}
	return nil
}

// ValidatePathInDirectory validates that a host path, when resolved, stays
// within baseDir. Both are cleaned and baseDir is made absolute before the
// comparison; a relative path is resolved against baseDir.
//
//	ValidatePathInDirectory("../../etc/passwd", "/tmp/pulled") // escapes
//	ValidatePathInDirectory("DCIM/a.jpg", "/tmp/pulled")       // ok
func ValidatePathInDirectory(path string, baseDir string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	cleanBase := filepath.Clean(baseDir)

	var err error
	if !filepath.IsAbs(cleanBase) {
		cleanBase, err = filepath.Abs(cleanBase)
		if err != nil {
			return fmt.Errorf("failed to resolve base directory: %w", err)
		}
	}

	resolvedPath := cleanPath
	if !filepath.IsAbs(cleanPath) {
		resolvedPath = filepath.Join(cleanBase, cleanPath)
	}

	relPath, err := filepath.Rel(cleanBase, filepath.Clean(resolvedPath))
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}

	if strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || relPath == ".." {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", path, baseDir)
	}

	return nil
}
