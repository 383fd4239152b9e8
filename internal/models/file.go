// Package models holds the value types shared by the directory readers, the
// transfer engine and the CLI.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FileEntry is one entry of a single directory listing. It is an immutable
// snapshot: listings are re-fetched on every navigation or scan.
type FileEntry struct {
	Name        string
	IsDirectory bool
	// Size is nil for directories.
	Size    *uint64
	ModTime time.Time
}

// NewFileEntry builds a file entry with a known size.
func NewFileEntry(name string, size uint64) FileEntry {
	return FileEntry{Name: name, Size: &size}
}

// NewDirEntry builds a directory entry; directories carry no size.
func NewDirEntry(name string) FileEntry {
	return FileEntry{Name: name, IsDirectory: true}
}

// SizeOrZero returns the size, or 0 when it is unknown.
func (e FileEntry) SizeOrZero() uint64 {
	if e.Size == nil {
		return 0
	}
	return *e.Size
}

// DisplaySize renders the size for listings ("-" for directories).
func (e FileEntry) DisplaySize() string {
	if e.IsDirectory || e.Size == nil {
		return "-"
	}
	return FormatBytes(*e.Size)
}

// FormatBytes renders n with binary units.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// SortEntries orders a listing for browsing: directories first, then by
// case-insensitive name.
func SortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDirectory != entries[j].IsDirectory {
			return entries[i].IsDirectory
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}
