// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	apperrors "sqlbridge/cli/internal/errors"
)

// errorHelp is the user-facing explanation of one error kind.
type errorHelp struct {
	title  string
	detail []string
	action string
}

var helpByKind = map[apperrors.Kind]errorHelp{
	apperrors.Connection: {
		title: "Database Unreachable",
		detail: []string{
			"The database did not accept the connection or dropped it.",
			"Check that the server is running and reachable from this machine",
			"and that the DSN points at the right host, port and database.",
		},
		action: "Run 'sqlbridge dbinfo' to check the stored connection",
	},
	apperrors.DuplicateKey: {
		title:  "Duplicate Key",
		detail: []string{"A record with the same key already exists."},
		action: "Use op=update to change the existing record",
	},
	apperrors.ForeignKey: {
		title: "Referenced Record Missing",
		detail: []string{
			"The record points at a row that does not exist,",
			"or other records still point at the row being removed.",
		},
		action: "Create the referenced record first, or remove the dependent records",
	},
	apperrors.StaleRow: {
		title:  "Record Changed",
		detail: []string{"The record was changed or removed after it was read."},
		action: "Fetch the record again and repeat the change",
	},
	apperrors.Unsupported: {
		title:  "Not Supported",
		detail: []string{"The selected database product does not offer this operation."},
	},
	apperrors.MissingOperation: {
		title:  "Missing Operation",
		detail: []string{"Every request needs an op parameter."},
		action: "Add op=fetch, op=add, op=update or op=remove",
	},
	apperrors.MalformedCriteria: {
		title:  "Malformed Criteria",
		detail: []string{"The _acriteria parameter is not valid criteria JSON."},
	},
	apperrors.UnknownEntity: {
		title:  "Unknown Entity",
		detail: []string{"The entity is not part of the catalog."},
		action: "Run 'sqlbridge describe' to list the entities",
	},
}

// FormatDBError renders err for the terminal, with an explanation chosen by
// its kind. The technical message is masked.
func FormatDBError(err error) string {
	if err == nil {
		return ""
	}
	help, ok := helpByKind[apperrors.KindOf(err)]
	if !ok {
		help = errorHelp{title: "Request Failed"}
	}

	var builder strings.Builder
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(help.title))
	builder.WriteString("\n\n")
	for _, line := range help.detail {
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	if help.action != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + help.action))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return builder.String()
}

// PresentDBError prints a formatted error to stderr.
func PresentDBError(err error) {
	fmt.Fprintln(os.Stderr, "\n"+FormatDBError(err)+"\n")
}
