package latex

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phunterlau/flattex/internal/texio"
	"github.com/phunterlau/flattex/internal/types"
)

// documentStartMarker identifies the top-level document among fragments
// that are only ever included.
const documentStartMarker = `\begin{document}`

// ErrNoMainFileFound indicates that no document under the searched root
// contains the document-start marker.
var ErrNoMainFileFound = errors.New("no main document file found")

// conventionalMainFileNames are preferred, in order, when several
// candidates contain the document-start marker.
var conventionalMainFileNames = []string{"main.tex", "paper.tex", "article.tex"}

// LocateMainFile scans rootDirectory for the document containing the
// document-start marker on a comment-stripped line. When several files
// qualify the tie is broken deterministically: a conventional file name
// wins first, then the shallowest path, then the lexicographically
// smallest full path. Unreadable files are skipped.
func LocateMainFile(fileSystem texio.FileSystem, rootDirectory string) (string, error) {
	documentPaths, listError := fileSystem.ListFiles(rootDirectory, func(path string) bool {
		return strings.HasSuffix(strings.ToLower(path), types.DocumentExtension)
	})
	if listError != nil {
		return "", listError
	}

	var candidatePaths []string
	for _, documentPath := range documentPaths {
		documentContent, readError := fileSystem.ReadText(documentPath)
		if readError != nil {
			continue
		}
		if containsDocumentStart(documentContent) {
			candidatePaths = append(candidatePaths, documentPath)
		}
	}

	switch len(candidatePaths) {
	case 0:
		return "", ErrNoMainFileFound
	case 1:
		return candidatePaths[0], nil
	default:
		return disambiguateMainFile(candidatePaths), nil
	}
}

// containsDocumentStart reports whether any comment-stripped line of
// content contains the document-start marker.
func containsDocumentStart(content string) bool {
	for _, rawLine := range strings.Split(content, "\n") {
		if strings.Contains(StripComments(rawLine), documentStartMarker) {
			return true
		}
	}
	return false
}

// disambiguateMainFile applies the documented total order to two or more
// candidate paths and returns the winner.
func disambiguateMainFile(candidatePaths []string) string {
	for _, conventionalName := range conventionalMainFileNames {
		for _, candidatePath := range candidatePaths {
			if strings.EqualFold(filepath.Base(candidatePath), conventionalName) {
				return candidatePath
			}
		}
	}

	sort.SliceStable(candidatePaths, func(leftIndex, rightIndex int) bool {
		leftDepth := pathDepth(candidatePaths[leftIndex])
		rightDepth := pathDepth(candidatePaths[rightIndex])
		if leftDepth != rightDepth {
			return leftDepth < rightDepth
		}
		return candidatePaths[leftIndex] < candidatePaths[rightIndex]
	})
	return candidatePaths[0]
}

// pathDepth counts the separator-delimited segments of a cleaned path.
func pathDepth(path string) int {
	return len(strings.Split(filepath.ToSlash(filepath.Clean(path)), "/"))
}
