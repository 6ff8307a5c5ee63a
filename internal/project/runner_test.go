package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/phunterlau/flattex/internal/texio"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create directory for %s: %v", filePath, makeDirError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// newTestRunner constructs a Runner over the real filesystem with a no-op logger.
func newTestRunner() *Runner {
	return NewRunner(texio.NewOSFileSystem(), nil)
}

// TestRunFlattensProjectWithBibliography verifies the full pipeline on a
// project with one include and one cited bibliography entry.
func TestRunFlattensProjectWithBibliography(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\documentclass{article}\n\\begin{document}\n\\input{sections/intro}\n\\end{document}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "sections", "intro.tex"),
		"Hello \\cite{smith2023}.\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "references.bib"),
		"@article{smith2023, title={A Study}, year={2023}}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}

	if !strings.Contains(document.Text, "Hello \\cite{smith2023}.") {
		testingHandle.Fatalf("include not inlined: %q", document.Text)
	}
	if strings.Contains(document.Text, "\\input{") {
		testingHandle.Fatalf("unresolved include directive left in output: %q", document.Text)
	}
	if !strings.Contains(document.Text, "@article{smith2023") {
		testingHandle.Fatalf("bibliography entry missing from output: %q", document.Text)
	}
	expectedHeaderLines := []string{
		"% === Bibliography Entries for LLM Reference ===",
		"% The following BibTeX entries correspond to citations in the document.",
		"% This section is added for LLM tools to understand the references.",
	}
	for _, expectedHeaderLine := range expectedHeaderLines {
		if !strings.Contains(document.Text, expectedHeaderLine) {
			testingHandle.Fatalf("bibliography header line missing: %q", expectedHeaderLine)
		}
	}
	if document.EntryCount != 1 {
		testingHandle.Fatalf("expected one resolved entry, got %d", document.EntryCount)
	}
	if !reflect.DeepEqual(document.CitationKeys, []string{"smith2023"}) {
		testingHandle.Fatalf("unexpected citation keys: %v", document.CitationKeys)
	}
	if document.Diagnostics.HasProblems() {
		testingHandle.Fatalf("unexpected diagnostics: %+v", document.Diagnostics)
	}
	if filepath.Base(document.OutputPath) != "main_expanded.tex" {
		testingHandle.Fatalf("unexpected output path: %s", document.OutputPath)
	}
}

// TestRunMissingIncludeIsRecoverable verifies the missing-include scenario:
// a placeholder in the body, one diagnostic, and a successful run.
func TestRunMissingIncludeIsRecoverable(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\begin{document}\n\\input{missing}\n\\end{document}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run must succeed despite missing include: %v", runError)
	}
	if !strings.Contains(document.Text, "[MISSING FILE: ") || !strings.Contains(document.Text, "missing") {
		testingHandle.Fatalf("expected placeholder naming the missing file: %q", document.Text)
	}
	if len(document.Diagnostics.MissingIncludes) != 1 {
		testingHandle.Fatalf("expected one missing-include diagnostic, got %v", document.Diagnostics.MissingIncludes)
	}
}

// TestRunCircularIncludeIsRecoverable verifies the two-file cycle scenario.
func TestRunCircularIncludeIsRecoverable(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "a.tex"),
		"\\begin{document}\n\\input{b}\n\\end{document}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "b.tex"), "B\n\\input{a}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run must succeed despite cycle: %v", runError)
	}
	if markerCount := strings.Count(document.Text, "[CIRCULAR INCLUDE: "); markerCount != 1 {
		testingHandle.Fatalf("expected exactly one circular-include marker, got %d", markerCount)
	}
	if len(document.Diagnostics.CircularIncludes) != 1 {
		testingHandle.Fatalf("expected one circular-include diagnostic, got %v", document.Diagnostics.CircularIncludes)
	}
}

// TestRunMissingCitationKeyOmitted verifies that a cited key without any
// database entry is omitted from output and listed in diagnostics.
func TestRunMissingCitationKeyOmitted(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\begin{document}\nSee \\cite{known} and \\cite{unknown}.\n\\end{document}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "refs.bib"),
		"@article{known, title={Known}, year={2020}}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}
	if document.EntryCount != 1 {
		testingHandle.Fatalf("expected one resolved entry, got %d", document.EntryCount)
	}
	if !reflect.DeepEqual(document.Diagnostics.MissingCitationKeys, []string{"unknown"}) {
		testingHandle.Fatalf("unexpected missing keys: %v", document.Diagnostics.MissingCitationKeys)
	}
}

// TestRunDuplicateKeyAcrossDatabases verifies that the first database in
// lexicographic visitation order supplies the entry for a duplicated key.
func TestRunDuplicateKeyAcrossDatabases(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\begin{document}\n\\cite{shared}\n\\end{document}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "a-first.bib"),
		"@article{shared, title={From A}, year={2020}}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "b-second.bib"),
		"@article{shared, title={From B}, year={2021}}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}
	if document.EntryCount != 1 {
		testingHandle.Fatalf("expected one entry for the duplicated key, got %d", document.EntryCount)
	}
	if !strings.Contains(document.Text, "From A") || strings.Contains(document.Text, "From B") {
		testingHandle.Fatalf("expected entry from first database only: %q", document.Text)
	}
}

// TestRunSkipBibliography verifies that bibliography processing is skipped
// entirely when requested.
func TestRunSkipBibliography(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\begin{document}\n\\cite{smith2023}\n\\end{document}\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "refs.bib"),
		"@article{smith2023, title={A Study}, year={2023}}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{SkipBibliography: true})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}
	if strings.Contains(document.Text, "@article") {
		testingHandle.Fatalf("bibliography must not be processed: %q", document.Text)
	}
	if len(document.CitationKeys) != 0 || document.EntryCount != 0 {
		testingHandle.Fatalf("unexpected bibliography state: keys=%v entries=%d",
			document.CitationKeys, document.EntryCount)
	}
}

// TestRunNoEntriesTrailer verifies the trailer written when citations
// resolve to no entries.
func TestRunNoEntriesTrailer(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.tex"),
		"\\begin{document}\nno citations here\n\\end{document}\n")

	document, runError := newTestRunner().Run(rootDirectory, Options{})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}
	if !strings.Contains(document.Text, "No Bibliography Entries Found") {
		testingHandle.Fatalf("expected empty-bibliography trailer: %q", document.Text)
	}
}

// TestRunNoMainFileIsTerminal verifies that the absence of a main document
// is the terminal failure of a run.
func TestRunNoMainFileIsTerminal(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "fragment.tex"), "no document marker\n")

	if _, runError := newTestRunner().Run(rootDirectory, Options{}); runError == nil {
		testingHandle.Fatal("expected terminal error when no main file exists")
	}
}

// TestRunUnreadableInputPathWrapsCause verifies that a direct-file input
// that cannot be read yields an error carrying the underlying cause.
func TestRunUnreadableInputPathWrapsCause(testingHandle *testing.T) {
	missingPath := filepath.Join(testingHandle.TempDir(), "absent.tex")

	_, runError := newTestRunner().Run(missingPath, Options{})
	if runError == nil {
		testingHandle.Fatal("expected error for unreadable input path")
	}
	if !errors.Is(runError, fs.ErrNotExist) {
		testingHandle.Fatalf("underlying cause not wrapped: %v", runError)
	}
	if !strings.Contains(runError.Error(), "cannot be read") {
		testingHandle.Fatalf("unexpected error message: %v", runError)
	}
}

// TestRunDirectFileInputAndOutputOverride verifies running against an
// explicit main file path with an output name override.
func TestRunDirectFileInputAndOutputOverride(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	mainFilePath := filepath.Join(rootDirectory, "paper.tex")
	writeTestFile(testingHandle, mainFilePath, "\\begin{document}\nbody\n\\end{document}\n")
	overridePath := filepath.Join(rootDirectory, "flat.tex")

	document, runError := newTestRunner().Run(mainFilePath, Options{OutputName: overridePath})
	if runError != nil {
		testingHandle.Fatalf("Run failed: %v", runError)
	}
	if document.MainFilePath != mainFilePath {
		testingHandle.Fatalf("unexpected main file: %s", document.MainFilePath)
	}
	if document.OutputPath != overridePath {
		testingHandle.Fatalf("unexpected output path: %s", document.OutputPath)
	}
}
