// Package latex implements the text-level LaTeX transformations behind
// flattex: comment stripping, include expansion, citation extraction, and
// main file discovery. The package never interprets LaTeX semantics beyond
// the handful of directives it needs to recognize.
package latex

const (
	commentMarker   = '%'
	escapeCharacter = '\\'
)

// StripComments truncates line at the first unescaped comment marker.
// A marker preceded by an odd number of backslashes is escaped text and is
// preserved together with its escapes; a marker preceded by an even number
// of backslashes (including zero) starts a comment. Lines without an
// unescaped marker are returned unchanged.
func StripComments(line string) string {
	precedingEscapes := 0
	for characterIndex := 0; characterIndex < len(line); characterIndex++ {
		switch line[characterIndex] {
		case escapeCharacter:
			precedingEscapes++
		case commentMarker:
			if precedingEscapes%2 == 0 {
				return line[:characterIndex]
			}
			precedingEscapes = 0
		default:
			precedingEscapes = 0
		}
	}
	return line
}
