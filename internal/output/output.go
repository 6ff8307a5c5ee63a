// Package output renders the run report describing a flattening run.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/phunterlau/flattex/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	reportHeader      = "----- FLATTEX RUN -----"
	diagnosticsHeader = "----- DIAGNOSTICS -----"
	noneValue         = "(none)"

	missingIncludeLabel  = "missing include: "
	circularIncludeLabel = "circular include: "
	missingCitationLabel = "missing citation key: "
)

// RenderRunReportRaw returns the run report in raw text format.
func RenderRunReportRaw(document types.ExpandedDocument) string {
	var buffer bytes.Buffer

	buffer.WriteString(reportHeader + "\n")
	buffer.WriteString("Main File: " + document.MainFilePath + "\n")
	buffer.WriteString("Output: " + document.OutputPath + "\n")
	buffer.WriteString("Citations: " + strconv.Itoa(len(document.CitationKeys)) + "\n")
	buffer.WriteString("Bibliography Entries: " + strconv.Itoa(document.EntryCount) + "\n")
	if document.TokenModel != "" {
		buffer.WriteString(fmt.Sprintf("Tokens (%s): %d\n", document.TokenModel, document.Tokens))
	}

	buffer.WriteString(diagnosticsHeader + "\n")
	if !document.Diagnostics.HasProblems() {
		buffer.WriteString(noneValue + "\n")
		return buffer.String()
	}
	for _, missingPath := range document.Diagnostics.MissingIncludes {
		buffer.WriteString(missingIncludeLabel + missingPath + "\n")
	}
	for _, circularPath := range document.Diagnostics.CircularIncludes {
		buffer.WriteString(circularIncludeLabel + circularPath + "\n")
	}
	for _, missingKey := range document.Diagnostics.MissingCitationKeys {
		buffer.WriteString(missingCitationLabel + missingKey + "\n")
	}
	if document.Diagnostics.MalformedEntryCount > 0 {
		buffer.WriteString("malformed bibliography entries dropped: " +
			strconv.Itoa(document.Diagnostics.MalformedEntryCount) + "\n")
	}
	return buffer.String()
}

// RenderRunReportJSON marshals the run report as indented JSON.
func RenderRunReportJSON(document types.ExpandedDocument) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}
