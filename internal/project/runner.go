// Package project orchestrates a full flattening run: main file location,
// include expansion, citation extraction, bibliography resolution, and
// final document assembly.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/phunterlau/flattex/internal/bibtex"
	"github.com/phunterlau/flattex/internal/latex"
	"github.com/phunterlau/flattex/internal/texio"
	"github.com/phunterlau/flattex/internal/types"
)

const (
	bibliographySectionHeader = "\n\n% === Bibliography Entries for LLM Reference ===\n" +
		"% The following BibTeX entries correspond to citations in the document.\n" +
		"% This section is added for LLM tools to understand the references.\n\n"
	bibliographyEmptyTrailer = "\n\n% === No Bibliography Entries Found ===\n"
	expandedFileNameSuffix   = "_expanded"

	inputPathUnreadableFormat = "input path %s cannot be read: %w"
)

// Options control a single run.
type Options struct {
	// SkipBibliography disables bibliography processing entirely; the
	// output then consists of the expanded body alone.
	SkipBibliography bool
	// OutputName overrides the default <mainstem>_expanded.tex output path.
	OutputName string
}

// Runner wires the core components together over one FileSystem.
type Runner struct {
	fileSystem texio.FileSystem
	logger     *zap.Logger
}

// NewRunner constructs a Runner. A nil logger is replaced with a no-op one.
func NewRunner(fileSystem texio.FileSystem, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{fileSystem: fileSystem, logger: logger}
}

// Run flattens the project rooted at inputPath, which may name the main
// document file directly or a directory to search. The run prefers
// producing a best-effort document over aborting: every recoverable
// problem is collected on the returned Diagnostics. The only terminal
// failures are an unusable input path and the absence of any main file.
// The returned document is not yet written to disk.
func (runner *Runner) Run(inputPath string, options Options) (types.ExpandedDocument, error) {
	mainFilePath, projectRoot, locateError := runner.locateMainFile(inputPath)
	if locateError != nil {
		return types.ExpandedDocument{}, locateError
	}
	runner.logger.Info("Processing main file", zap.String("path", mainFilePath))

	expander := latex.NewExpander(runner.fileSystem)
	expandedBody := expander.Expand(mainFilePath)
	document := types.ExpandedDocument{
		MainFilePath: mainFilePath,
		OutputPath:   runner.outputPath(mainFilePath, options.OutputName),
		Diagnostics:  expander.Diagnostics(),
	}

	for _, missingPath := range document.Diagnostics.MissingIncludes {
		runner.logger.Warn("Missing include file", zap.String("path", missingPath))
	}
	for _, circularPath := range document.Diagnostics.CircularIncludes {
		runner.logger.Warn("Circular include detected", zap.String("path", circularPath))
	}

	if options.SkipBibliography {
		document.Text = expandedBody
		return document, nil
	}

	document.CitationKeys = latex.ExtractCitationKeys(expandedBody)
	runner.logger.Info("Extracted citations", zap.Int("count", len(document.CitationKeys)))

	document.Entries = runner.resolveBibliography(projectRoot, document.CitationKeys, &document.Diagnostics)
	document.EntryCount = len(document.Entries)
	document.Text = assembleDocument(expandedBody, document.Entries)
	return document, nil
}

// locateMainFile resolves inputPath to the main document and the project
// root used for bibliography discovery.
func (runner *Runner) locateMainFile(inputPath string) (string, string, error) {
	if runner.fileSystem.IsDirectory(inputPath) {
		mainFilePath, locateError := latex.LocateMainFile(runner.fileSystem, inputPath)
		if locateError != nil {
			return "", "", locateError
		}
		return mainFilePath, inputPath, nil
	}

	if _, readError := runner.fileSystem.ReadText(inputPath); readError != nil {
		return "", "", fmt.Errorf(inputPathUnreadableFormat, inputPath, readError)
	}
	return inputPath, filepath.Dir(inputPath), nil
}

// resolveBibliography parses every bibliography database under projectRoot
// in lexicographic order into one index and looks up each citation key in
// first-seen order. Cited keys with no entry in any database are recorded
// as diagnostics and omitted from the result.
func (runner *Runner) resolveBibliography(projectRoot string, citationKeys []string, diagnostics *types.Diagnostics) []types.BibEntry {
	if len(citationKeys) == 0 {
		return nil
	}

	databasePaths, listError := runner.fileSystem.ListFiles(projectRoot, func(path string) bool {
		return strings.HasSuffix(strings.ToLower(path), types.BibliographyExtension)
	})
	if listError != nil {
		runner.logger.Warn("Bibliography discovery failed", zap.Error(listError))
		diagnostics.MissingCitationKeys = append(diagnostics.MissingCitationKeys, citationKeys...)
		return nil
	}
	runner.logger.Info("Found bibliography databases", zap.Int("count", len(databasePaths)))

	index := bibtex.NewIndex()
	for _, databasePath := range databasePaths {
		databaseContent, readError := runner.fileSystem.ReadText(databasePath)
		if readError != nil {
			runner.logger.Warn("Could not read bibliography database",
				zap.String("path", databasePath), zap.Error(readError))
			continue
		}
		parsedEntries, discardedCount := bibtex.ParseEntries(databaseContent)
		diagnostics.MalformedEntryCount += discardedCount
		index.AddEntries(parsedEntries)
	}

	var resolvedEntries []types.BibEntry
	for _, citationKey := range citationKeys {
		entry, found := index.Lookup(citationKey)
		if !found {
			diagnostics.MissingCitationKeys = append(diagnostics.MissingCitationKeys, citationKey)
			continue
		}
		resolvedEntries = append(resolvedEntries, entry)
	}
	if len(diagnostics.MissingCitationKeys) > 0 {
		runner.logger.Warn("Missing bibliography entries",
			zap.Strings("keys", diagnostics.MissingCitationKeys))
	}
	return resolvedEntries
}

// assembleDocument appends the rendered bibliography section to the
// expanded body. Entries appear verbatim in first-cited order.
func assembleDocument(expandedBody string, entries []types.BibEntry) string {
	if len(entries) == 0 {
		return expandedBody + bibliographyEmptyTrailer
	}

	var builder strings.Builder
	builder.WriteString(expandedBody)
	builder.WriteString(bibliographySectionHeader)
	for _, entry := range entries {
		builder.WriteString(entry.Body)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// outputPath derives the artifact path: an explicit override wins,
// otherwise the main file's stem with the expanded suffix, next to the
// main file.
func (runner *Runner) outputPath(mainFilePath string, outputName string) string {
	if outputName != "" {
		return outputName
	}
	fileStem := strings.TrimSuffix(filepath.Base(mainFilePath), filepath.Ext(mainFilePath))
	return filepath.Join(filepath.Dir(mainFilePath), fileStem+expandedFileNameSuffix+types.DocumentExtension)
}
