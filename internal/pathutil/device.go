package pathutil

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/droidxfer/droidxfer/internal/constants"
)

// NormalizeForDevice rewrites every backslash to a forward slash.
// Device paths never contain backslashes.
func NormalizeForDevice(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// NormalizeForHost converts p to the host's separator convention. On a
// backslash host the result uses native separators; everywhere else
// backslashes become forward slashes.
func NormalizeForHost(p string) string {
	return normalizeForHost(p, filepath.Separator)
}

func normalizeForHost(p string, sep rune) string {
	if sep == '\\' {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// Join concatenates base and child with the separator of the namespace and
// collapses the duplicate separators the concatenation can produce (device
// roots may or may not carry a trailing slash).
func Join(base, child string, isDevice bool) string {
	if !isDevice {
		return filepath.Join(NormalizeForHost(base), NormalizeForHost(child))
	}
	if child == "" {
		return collapseSlashes(NormalizeForDevice(base))
	}
	return collapseSlashes(NormalizeForDevice(base) + constants.DeviceSeparator + NormalizeForDevice(child))
}

// JoinRelative appends name to a path relative to a transfer root. The root
// itself is the empty string.
func JoinRelative(rel, name string, isDevice bool) string {
	if rel == "" {
		return name
	}
	if isDevice {
		return rel + constants.DeviceSeparator + name
	}
	return rel + string(filepath.Separator) + name
}

// ParentOf returns the parent of p without ever ascending past a root.
//
// Device paths drop their last non-empty segment; when nothing is left the
// result is deviceRoot (constants.DefaultDeviceRoot when empty). Host paths
// follow filepath.Dir, and p is returned unchanged once Dir stops moving.
func ParentOf(p string, isDevice bool, deviceRoot string) string {
	if isDevice {
		if deviceRoot == "" {
			deviceRoot = constants.DefaultDeviceRoot
		}
		segments := nonEmptySegments(NormalizeForDevice(p))
		if len(segments) <= 1 {
			return deviceRoot
		}
		return "/" + strings.Join(segments[:len(segments)-1], "/")
	}

	if parent, ok := hostParent(p); ok {
		return parent
	}
	return p
}

// hostParent returns the parent of a host path, or false once p is a
// filesystem root and filepath.Dir stops moving.
func hostParent(p string) (string, bool) {
	cleaned := filepath.Clean(p)
	parent := filepath.Dir(cleaned)
	if parent == cleaned {
		return "", false
	}
	return parent, true
}

// BaseName returns the last element of p in the given namespace.
func BaseName(p string, isDevice bool) string {
	if isDevice {
		return path.Base(NormalizeForDevice(p))
	}
	return filepath.Base(p)
}

func nonEmptySegments(p string) []string {
	parts := strings.Split(p, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func collapseSlashes(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
