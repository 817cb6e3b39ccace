// Package domain defines the value types shared across the engine.
//
// Everything here is an immutable per-message value: created when a message
// enters the run, evaluated, and discarded once the decision has been acted
// on. Nothing in this package performs I/O.
package domain

import (
	"strings"
	"time"
)

// Attachment carries one mail attachment with its text already extracted.
// Binary-to-text conversion happens upstream; the engine only ever sees
// ExtractedText and, for spreadsheet-shaped attachments, Rows.
type Attachment struct {
	Filename      string
	ContentKind   string
	ExtractedText string
	Rows          [][]string
}

// IsCalendarInvite reports whether the attachment looks like an ICS invite.
func (a Attachment) IsCalendarInvite() bool {
	return strings.HasSuffix(strings.ToLower(a.Filename), ".ics") ||
		strings.Contains(strings.ToLower(a.ContentKind), "calendar")
}

// IsSpreadsheet reports whether the attachment carries tabular candidate data.
func (a Attachment) IsSpreadsheet() bool {
	kind := strings.ToLower(a.ContentKind)
	if strings.Contains(kind, "sheet") || strings.Contains(kind, "csv") {
		return true
	}

	name := strings.ToLower(a.Filename)
	for _, ext := range []string{".xlsx", ".xls", ".csv"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

// Message is one notification as handed to the engine.
type Message struct {
	ID          string
	ThreadID    string
	Subject     string
	PlainBody   string
	HTMLBody    string
	Sender      string
	ReceivedAt  time.Time
	Attachments []Attachment
}
