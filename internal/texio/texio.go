// Package texio isolates the core from raw file input and output.
// The expansion and bibliography engines consume the FileSystem interface
// instead of touching the disk directly, which keeps their unit tests
// free of ambient state.
package texio

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileSystem is the collaborator interface consumed by the core.
type FileSystem interface {
	// ReadText returns the decoded content of the file at path.
	ReadText(path string) (string, error)
	// WriteText stores text at path, replacing any existing file.
	WriteText(path string, text string) error
	// ListFiles enumerates every regular file under rootDirectory accepted by
	// the predicate, sorted lexicographically by full path.
	ListFiles(rootDirectory string, predicate func(path string) bool) ([]string, error)
	// IsDirectory reports whether path names an existing directory.
	IsDirectory(path string) bool
}

// OSFileSystem implements FileSystem against the local disk.
type OSFileSystem struct{}

// NewOSFileSystem constructs the production FileSystem implementation.
func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// ReadText reads the file at path as text.
//
// #nosec G304
func (OSFileSystem) ReadText(path string) (string, error) {
	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return "", readError
	}
	return string(fileBytes), nil
}

// WriteText writes text to path with owner read-write permissions.
func (OSFileSystem) WriteText(path string, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}

// IsDirectory reports whether path names an existing directory.
func (OSFileSystem) IsDirectory(path string) bool {
	fileInformation, statError := os.Stat(path)
	return statError == nil && fileInformation.IsDir()
}

// ListFiles walks rootDirectory and returns the matching file paths in
// lexicographic order. Inaccessible subtrees are skipped rather than
// aborting the enumeration.
func (OSFileSystem) ListFiles(rootDirectory string, predicate func(path string) bool) ([]string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectory)
	if absolutePathError != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", rootDirectory, absolutePathError)
	}

	var matchedPaths []string
	walkError := filepath.WalkDir(absoluteRootPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if directoryEntry.IsDir() {
			return nil
		}
		if predicate == nil || predicate(walkedPath) {
			matchedPaths = append(matchedPaths, walkedPath)
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Strings(matchedPaths)
	return matchedPaths, nil
}

var _ FileSystem = OSFileSystem{}
