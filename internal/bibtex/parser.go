// Package bibtex extracts entries from BibTeX database text and indexes
// them by citation key. The parser is deliberately tolerant: malformed
// trailing entries are dropped rather than reported, so one broken record
// never invalidates an otherwise usable database.
package bibtex

import (
	"regexp"
	"strings"

	"github.com/phunterlau/flattex/internal/types"
)

// entryStartPattern matches the head of a BibTeX entry: an at sign, the
// entry type word, the opening delimiter, and the entry key up to the
// first field separator.
var entryStartPattern = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s]+)\s*,`)

const (
	openingDelimiter  = '{'
	closingDelimiter  = '}'
	commentLinePrefix = "%"
)

// ParseEntries scans text for BibTeX entries and returns them in document
// order together with the number of entries discarded because their
// delimiters never balanced. Duplicate keys within the same text keep the
// first occurrence.
func ParseEntries(text string) ([]types.BibEntry, int) {
	content := dropCommentLines(text)

	var parsedEntries []types.BibEntry
	seenKeys := make(map[string]struct{})
	discardedCount := 0

	searchPosition := 0
	for searchPosition < len(content) {
		matchOffsets := entryStartPattern.FindStringSubmatchIndex(content[searchPosition:])
		if matchOffsets == nil {
			break
		}

		entryStart := searchPosition + matchOffsets[0]
		entryKey := content[searchPosition+matchOffsets[4] : searchPosition+matchOffsets[5]]

		entryEnd, balanced := findEntryEnd(content, entryStart)
		if !balanced {
			discardedCount++
			searchPosition += matchOffsets[1]
			continue
		}

		if _, duplicateKey := seenKeys[entryKey]; !duplicateKey {
			seenKeys[entryKey] = struct{}{}
			parsedEntries = append(parsedEntries, types.BibEntry{
				Key:  entryKey,
				Body: content[entryStart:entryEnd],
			})
		}
		searchPosition = entryEnd
	}

	return parsedEntries, discardedCount
}

// findEntryEnd determines where the entry starting at entryStart closes by
// counting nested delimiters. Every opening delimiter anywhere in the entry
// body increments the depth and every closing delimiter decrements it, so
// braces nested inside field values are handled correctly. The second
// return value is false when the delimiters never balance before
// end-of-text.
func findEntryEnd(content string, entryStart int) (int, bool) {
	delimiterDepth := 0
	entered := false
	for characterIndex := entryStart; characterIndex < len(content); characterIndex++ {
		switch content[characterIndex] {
		case openingDelimiter:
			delimiterDepth++
			entered = true
		case closingDelimiter:
			delimiterDepth--
			if delimiterDepth == 0 && entered {
				return characterIndex + 1, true
			}
		}
	}
	return entryStart, false
}

// dropCommentLines removes blank lines and whole-line comments before
// entry scanning, mirroring how BibTeX itself treats text outside entries.
func dropCommentLines(text string) string {
	var keptLines []string
	for _, rawLine := range strings.Split(text, "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		keptLines = append(keptLines, trimmedLine)
	}
	return strings.Join(keptLines, "\n")
}
