// Package types defines every cross-package data structure used by the flattex CLI.
package types

const (
	// FormatRaw renders the run report as plain text.
	FormatRaw = "raw"
	// FormatJSON renders the run report as indented JSON.
	FormatJSON = "json"

	// DocumentExtension is the standard extension appended to extension-less include arguments.
	DocumentExtension = ".tex"
	// BibliographyExtension identifies bibliography database files.
	BibliographyExtension = ".bib"
)

// BibEntry is one bibliography record addressed by its citation key.
// Body holds the entry verbatim, delimiters included, and is always brace-balanced.
type BibEntry struct {
	Key  string `json:"key"`
	Body string `json:"body"`
}

// Diagnostics aggregates every recoverable problem encountered during a run.
type Diagnostics struct {
	MissingIncludes     []string `json:"missingIncludes,omitempty"`
	CircularIncludes    []string `json:"circularIncludes,omitempty"`
	MissingCitationKeys []string `json:"missingCitationKeys,omitempty"`
	MalformedEntryCount int      `json:"malformedEntryCount,omitempty"`
}

// HasProblems reports whether any diagnostic was recorded.
func (diagnostics Diagnostics) HasProblems() bool {
	return len(diagnostics.MissingIncludes) > 0 ||
		len(diagnostics.CircularIncludes) > 0 ||
		len(diagnostics.MissingCitationKeys) > 0 ||
		diagnostics.MalformedEntryCount > 0
}

// ExpandedDocument is the flattened artifact produced by a run.
type ExpandedDocument struct {
	MainFilePath string      `json:"mainFile"`
	OutputPath   string      `json:"outputPath"`
	Text         string      `json:"-"`
	CitationKeys []string    `json:"citationKeys,omitempty"`
	Entries      []BibEntry  `json:"-"`
	EntryCount   int         `json:"entryCount"`
	Diagnostics  Diagnostics `json:"diagnostics"`
	Tokens       int         `json:"tokens,omitempty"`
	TokenModel   string      `json:"tokenModel,omitempty"`
}
