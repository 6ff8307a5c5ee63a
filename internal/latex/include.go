package latex

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phunterlau/flattex/internal/texio"
	"github.com/phunterlau/flattex/internal/types"
)

// includeDirectivePattern matches the include-family directives at the start
// of a comment-stripped line. \input and \InputIfFileExists inline verbatim;
// \include and \subfile imply a standalone sub-document. All four are
// resolved identically for output purposes.
var includeDirectivePattern = regexp.MustCompile(
	`^\s*\\(input|include|InputIfFileExists|subfile)\s*\{\s*([^}]+?)\s*\}`,
)

const (
	missingFileMarkerFormat     = "%% [MISSING FILE: %s]"
	circularIncludeMarkerFormat = "%% [CIRCULAR INCLUDE: %s]"
)

// Expander recursively substitutes include directives with the content of
// their target files. Failures never abort an expansion: unreadable targets
// and circular includes are replaced with inline comment markers and
// collected as diagnostics. An Expander is built for a single run and must
// not be shared across concurrent expansions.
type Expander struct {
	fileSystem       texio.FileSystem
	missingIncludes  []string
	circularIncludes []string
}

// NewExpander constructs an Expander reading through the provided FileSystem.
func NewExpander(fileSystem texio.FileSystem) *Expander {
	return &Expander{fileSystem: fileSystem}
}

// Expand returns the fully expanded text of the document rooted at path.
// The returned text contains no unresolved include directives for any
// target that existed, was readable, and was not part of an include cycle.
func (expander *Expander) Expand(path string) string {
	openFiles := make(map[string]struct{})
	return expander.expandFile(path, openFiles)
}

// Diagnostics reports the include problems collected since construction.
func (expander *Expander) Diagnostics() types.Diagnostics {
	return types.Diagnostics{
		MissingIncludes:  expander.missingIncludes,
		CircularIncludes: expander.circularIncludes,
	}
}

// expandFile reads path and expands its content. A read failure yields a
// missing-file marker instead of an error.
func (expander *Expander) expandFile(path string, openFiles map[string]struct{}) string {
	fileContent, readError := expander.fileSystem.ReadText(path)
	if readError != nil {
		expander.missingIncludes = append(expander.missingIncludes, path)
		return fmt.Sprintf(missingFileMarkerFormat, path)
	}
	return expander.expandContent(path, fileContent, openFiles)
}

// expandContent walks content line by line, replacing each include directive
// with the recursively expanded target. openFiles holds exactly the
// ancestors of the current call: entries are added on entry and removed on
// return, so siblings may include the same file independently.
func (expander *Expander) expandContent(path string, content string, openFiles map[string]struct{}) string {
	cleanedPath := filepath.Clean(path)
	if _, alreadyOpen := openFiles[cleanedPath]; alreadyOpen {
		expander.circularIncludes = append(expander.circularIncludes, cleanedPath)
		return fmt.Sprintf(circularIncludeMarkerFormat, cleanedPath)
	}
	openFiles[cleanedPath] = struct{}{}
	defer delete(openFiles, cleanedPath)

	containingDirectory := filepath.Dir(cleanedPath)
	inputLines := strings.Split(content, "\n")
	outputLines := make([]string, 0, len(inputLines))

	for _, rawLine := range inputLines {
		directiveMatch := includeDirectivePattern.FindStringSubmatch(StripComments(rawLine))
		if directiveMatch == nil {
			outputLines = append(outputLines, rawLine)
			continue
		}

		includeArgument := strings.TrimSpace(directiveMatch[2])
		resolvedPath, resolvedContent, targetFound := expander.resolveIncludeTarget(containingDirectory, includeArgument)
		if !targetFound {
			requestedPath := filepath.Join(containingDirectory, includeArgument)
			expander.missingIncludes = append(expander.missingIncludes, requestedPath)
			outputLines = append(outputLines, fmt.Sprintf(missingFileMarkerFormat, requestedPath))
			continue
		}

		expandedText := expander.expandContent(resolvedPath, resolvedContent, openFiles)
		outputLines = append(outputLines, strings.TrimSuffix(expandedText, "\n"))
	}

	return strings.Join(outputLines, "\n")
}

// resolveIncludeTarget locates the file named by an include argument
// relative to the directory of the currently open file. The literal
// argument is tried first, then the argument with the standard document
// extension appended.
func (expander *Expander) resolveIncludeTarget(containingDirectory string, includeArgument string) (string, string, bool) {
	candidateArguments := []string{includeArgument}
	if !strings.HasSuffix(includeArgument, types.DocumentExtension) {
		candidateArguments = append(candidateArguments, includeArgument+types.DocumentExtension)
	}

	for _, candidateArgument := range candidateArguments {
		candidatePath := filepath.Join(containingDirectory, candidateArgument)
		candidateContent, readError := expander.fileSystem.ReadText(candidatePath)
		if readError == nil {
			return candidatePath, candidateContent, true
		}
	}
	return "", "", false
}
