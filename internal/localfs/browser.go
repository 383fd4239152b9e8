// Package localfs is the host side of a transfer: synchronous directory
// listing, directory creation, removal and the streamed write used when
// pulling from the device.
package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/models"
)

// ListOptions configures the behavior of List.
type ListOptions struct {
	// IncludeHidden includes dot-files in results. Default is false.
	IncludeHidden bool
}

// LocalListError reports a failed listing of a host directory.
type LocalListError struct {
	Path string
	Err  error
}

func (e *LocalListError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Path, e.Err)
}

func (e *LocalListError) Unwrap() error {
	return e.Err
}

// IsLocalListError checks if an error is a LocalListError.
func IsLocalListError(err error) bool {
	var target *LocalListError
	return errors.As(err, &target)
}

// Reader lists host directories. It satisfies the transfer planner's
// directory-reader contract.
type Reader struct {
	Options ListOptions
}

// List lists path with the reader's options.
func (r Reader) List(path string) ([]models.FileEntry, error) {
	return List(path, r.Options)
}

// List returns the entries of one host directory, sorted directories first.
// Entries are classified without following symlinks. An entry that cannot be
// stat'ed (removed between readdir and stat) is skipped.
func List(path string, opts ListOptions) ([]models.FileEntry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, &LocalListError{Path: path, Err: err}
	}

	result := make([]models.FileEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()

		if !opts.IncludeHidden && IsHiddenName(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		result = append(result, entryFromInfo(info))
	}

	models.SortEntries(result)
	return result, nil
}

// Stat describes a single host path.
func Stat(path string) (models.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileEntry{}, err
	}
	return entryFromInfo(info), nil
}

func entryFromInfo(info os.FileInfo) models.FileEntry {
	var entry models.FileEntry
	if info.IsDir() {
		entry = models.NewDirEntry(info.Name())
	} else {
		entry = models.NewFileEntry(info.Name(), uint64(info.Size()))
	}
	entry.ModTime = info.ModTime()
	return entry
}

// MkdirAll creates path and any missing parents. An existing directory is
// not an error.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, constants.DirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Remove deletes path, recursively for directories. A missing path is an
// error so the caller can surface it.
func Remove(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// CopyFile writes src to dst. Data lands in dst+".part" and is renamed into
// place only after a complete, synced write, so a failed pull never leaves a
// truncated file under the final name. The parent of dst must exist.
func CopyFile(dst string, src io.Reader) (int64, error) {
	partPath := dst + constants.PartialSuffix

	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePerm)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Base(partPath), err)
	}

	n, err := io.Copy(f, src)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partPath)
		return n, fmt.Errorf("write %s: %w", dst, err)
	}

	if err := os.Rename(partPath, dst); err != nil {
		os.Remove(partPath)
		return n, fmt.Errorf("rename %s: %w", dst, err)
	}
	return n, nil
}
