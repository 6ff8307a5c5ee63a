package bibtex

import "github.com/phunterlau/flattex/internal/types"

// Index maps citation keys to entries collected across one or more
// databases. The first entry seen for a key wins; later duplicates from
// other files are ignored, not merged.
type Index struct {
	entriesByKey map[string]types.BibEntry
}

// NewIndex constructs an empty Index.
func NewIndex() *Index {
	return &Index{entriesByKey: make(map[string]types.BibEntry)}
}

// AddEntries registers entries under their keys, keeping existing entries
// for keys already present.
func (index *Index) AddEntries(entries []types.BibEntry) {
	for _, entry := range entries {
		if _, alreadyIndexed := index.entriesByKey[entry.Key]; alreadyIndexed {
			continue
		}
		index.entriesByKey[entry.Key] = entry
	}
}

// Lookup returns the entry for key and whether one is indexed.
func (index *Index) Lookup(key string) (types.BibEntry, bool) {
	entry, found := index.entriesByKey[key]
	return entry, found
}

// Size reports the number of distinct keys indexed.
func (index *Index) Size() int {
	return len(index.entriesByKey)
}
