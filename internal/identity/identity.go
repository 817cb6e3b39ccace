// Package identity detects whether the reader is personally named in a
// notification, by full name or registration number, and pulls out the venue
// written near the mention when one exists.
package identity

import (
	"regexp"
	"strings"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// Match is the outcome of an identity scan.
type Match struct {
	Found bool
	Venue string
}

// Matcher looks for one fixed name/registration pair.
type Matcher struct {
	lowerName string
	lowerReg  string

	// Co-location patterns, tried in order: name-then-venue, reg-then-venue,
	// venue-then-name, venue-then-reg. 100 chars of slack on one line.
	venuePatterns []*regexp.Regexp
}

var venueColumnHints = []string{"venue", "location", "room", "lab"}

// New builds a matcher for the profile's name and registration number.
func New(profile domain.Profile) *Matcher {
	name := regexp.QuoteMeta(profile.Name)
	reg := regexp.QuoteMeta(profile.RegNumber)

	return &Matcher{
		lowerName: strings.ToLower(profile.Name),
		lowerReg:  strings.ToLower(profile.RegNumber),
		venuePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)` + name + `[^\n]{0,100}(?:venue|location|room|lab)[:\s]*([^\n.;]+)`),
			regexp.MustCompile(`(?i)` + reg + `[^\n]{0,100}(?:venue|location|room|lab)[:\s]*([^\n.;]+)`),
			regexp.MustCompile(`(?i)(?:venue|location|room|lab)[:\s]*([^\n.;]+)[^\n]{0,100}` + name),
			regexp.MustCompile(`(?i)(?:venue|location|room|lab)[:\s]*([^\n.;]+)[^\n]{0,100}` + reg),
		},
	}
}

// InText reports whether the reader appears in the text as a case-insensitive
// substring, with the first co-located venue phrase when one exists.
func (m *Matcher) InText(text string) Match {
	lower := strings.ToLower(text)

	if !strings.Contains(lower, m.lowerName) && !strings.Contains(lower, m.lowerReg) {
		return Match{}
	}

	result := Match{Found: true}

	for _, pattern := range m.venuePatterns {
		match := pattern.FindStringSubmatch(text)
		if match != nil && strings.TrimSpace(match[1]) != "" {
			result.Venue = strings.TrimSpace(match[1])
			break
		}
	}

	return result
}

// InRows scans spreadsheet-shaped attachment data. The header row is
// inspected for a venue-ish column; a hit on name or registration number in
// any later row returns that row's value in the venue column.
func (m *Matcher) InRows(rows [][]string) Match {
	if len(rows) == 0 {
		return Match{}
	}

	venueCol := -1

	for i, header := range rows[0] {
		h := strings.ToLower(header)
		for _, hint := range venueColumnHints {
			if strings.Contains(h, hint) {
				venueCol = i
				break
			}
		}

		if venueCol >= 0 {
			break
		}
	}

	for _, row := range rows[1:] {
		rowText := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(rowText, m.lowerName) && !strings.Contains(rowText, m.lowerReg) {
			continue
		}

		result := Match{Found: true}
		if venueCol >= 0 && venueCol < len(row) {
			result.Venue = strings.TrimSpace(row[venueCol])
		}

		return result
	}

	return Match{}
}

// InAttachment checks extracted text first, then tabular rows.
func (m *Matcher) InAttachment(att domain.Attachment) Match {
	if att.ExtractedText != "" {
		if match := m.InText(att.ExtractedText); match.Found {
			return match
		}
	}

	if len(att.Rows) > 0 {
		return m.InRows(att.Rows)
	}

	return Match{}
}
