package latex

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/phunterlau/flattex/internal/texio"
)

const (
	documentPreamble = "\\documentclass{article}\n\\begin{document}\ncontent\n\\end{document}\n"
	fragmentContent  = "just a fragment, no document environment\n"
)

// TestLocateMainFileSingleCandidate verifies that the one file containing
// the document-start marker is selected.
func TestLocateMainFileSingleCandidate(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "thesis.tex"), documentPreamble)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "sections", "intro.tex"), fragmentContent)

	locatedPath, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if locateError != nil {
		testingHandle.Fatalf("LocateMainFile failed: %v", locateError)
	}
	if filepath.Base(locatedPath) != "thesis.tex" {
		testingHandle.Fatalf("unexpected main file: %s", locatedPath)
	}
}

// TestLocateMainFileNoCandidate verifies the no-main-file error when no
// document contains the marker.
func TestLocateMainFileNoCandidate(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "intro.tex"), fragmentContent)

	_, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if !errors.Is(locateError, ErrNoMainFileFound) {
		testingHandle.Fatalf("expected ErrNoMainFileFound, got %v", locateError)
	}
}

// TestLocateMainFilePrefersConventionalName verifies the first
// disambiguation rule: a conventional file name wins.
func TestLocateMainFilePrefersConventionalName(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "appendix.tex"), documentPreamble)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "deep", "main.tex"), documentPreamble)

	locatedPath, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if locateError != nil {
		testingHandle.Fatalf("LocateMainFile failed: %v", locateError)
	}
	if filepath.Base(locatedPath) != "main.tex" {
		testingHandle.Fatalf("expected conventional name to win, got %s", locatedPath)
	}
}

// TestLocateMainFilePrefersShallowestPath verifies the second
// disambiguation rule: without conventional names the shallowest path wins.
func TestLocateMainFilePrefersShallowestPath(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "zz-top.tex"), documentPreamble)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "nested", "aa-deep.tex"), documentPreamble)

	locatedPath, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if locateError != nil {
		testingHandle.Fatalf("LocateMainFile failed: %v", locateError)
	}
	if filepath.Base(locatedPath) != "zz-top.tex" {
		testingHandle.Fatalf("expected shallowest candidate to win, got %s", locatedPath)
	}
}

// TestLocateMainFileLexicographicTieBreak verifies the final rule: equal
// depth resolves to the lexicographically smallest full path.
func TestLocateMainFileLexicographicTieBreak(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "beta.tex"), documentPreamble)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "alpha.tex"), documentPreamble)

	locatedPath, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if locateError != nil {
		testingHandle.Fatalf("LocateMainFile failed: %v", locateError)
	}
	if filepath.Base(locatedPath) != "alpha.tex" {
		testingHandle.Fatalf("expected lexicographic winner, got %s", locatedPath)
	}
}

// TestLocateMainFileIgnoresCommentedMarker verifies that a commented-out
// document-start marker does not qualify a file.
func TestLocateMainFileIgnoresCommentedMarker(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "draft.tex"),
		"% \\begin{document}\nfragment only\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "real.tex"), documentPreamble)

	locatedPath, locateError := LocateMainFile(texio.NewOSFileSystem(), rootDirectory)
	if locateError != nil {
		testingHandle.Fatalf("LocateMainFile failed: %v", locateError)
	}
	if filepath.Base(locatedPath) != "real.tex" {
		testingHandle.Fatalf("expected commented marker to be ignored, got %s", locatedPath)
	}
}
