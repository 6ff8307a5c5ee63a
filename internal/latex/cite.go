package latex

import (
	"regexp"
	"strings"
)

// citationCommandPattern matches the \cite family together with the common
// biblatex spellings. Word-character suffixes cover variants such as
// \citep, \citet, \autocites, and \footcitetext; the optional star and up
// to two optional bracket groups cover starred forms and pre/postnotes.
// Occurrences whose argument braces never close do not match and are
// skipped, keeping extraction best-effort.
var citationCommandPattern = regexp.MustCompile(
	`\\(?:cite|autocite|textcite|parencite|footcite)\w*\*?\s*(?:\[[^\]]*\]\s*){0,2}\{([^{}]+)\}`,
)

// ExtractCitationKeys returns every citation key referenced in text,
// deduplicated, in order of first appearance. Keys inside a single
// citation argument are comma-separated and trimmed of surrounding
// whitespace; empty keys are dropped.
func ExtractCitationKeys(text string) []string {
	var orderedKeys []string
	seenKeys := make(map[string]struct{})

	for _, commandMatch := range citationCommandPattern.FindAllStringSubmatch(text, -1) {
		for _, rawKey := range strings.Split(commandMatch[1], ",") {
			citationKey := strings.TrimSpace(rawKey)
			if citationKey == "" {
				continue
			}
			if _, alreadySeen := seenKeys[citationKey]; alreadySeen {
				continue
			}
			seenKeys[citationKey] = struct{}{}
			orderedKeys = append(orderedKeys, citationKey)
		}
	}

	return orderedKeys
}
