package extract

import (
	"regexp"
	"strings"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// Labelled venue phrases, tried in order. The capture stops at a line break
// or sentence punctuation so a trailing paragraph never rides along.
var venuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)venue[:\s]*([^\n\r.;,]{3,50})`),
	regexp.MustCompile(`(?i)location[:\s]*([^\n\r.;,]{3,50})`),
	regexp.MustCompile(`(?i)room\s*(?:no\.?|number)?[:\s]*([^\n\r.;,]{3,30})`),
	regexp.MustCompile(`(?i)lab[:\s]*([^\n\r.;,]{3,30})`),
	regexp.MustCompile(`(?i)block[:\s]*([^\n\r.;,]{3,30})`),
	regexp.MustCompile(`(?i)(?:seminar\s+)?hall[:\s]*([^\n\r.;,]{3,30})`),
}

var ownLocationMarkers = []string{"own location", "your location"}

var onlineMarkers = []string{"online", "virtual", "webex", "zoom", "google meet", "ms teams"}

var venueColumnHints = []string{"venue", "location", "room", "lab"}

const (
	// VenueOwnLocation marks take-from-anywhere events.
	VenueOwnLocation = "Own Location"

	// VenueOnline marks remote events without a concrete link-derived place.
	VenueOnline = "Online"

	// VenueFallback is used when nothing in the message names a place.
	VenueFallback = "TBD"
)

// Venue picks the event venue for a notification. A venue already resolved
// by a name-list match wins outright. Otherwise the labelled patterns run,
// then the own-location and online markers, then tabular attachment data,
// and finally the TBD fallback.
func Venue(msg domain.Message, text, ownVenue string) string {
	if ownVenue != "" {
		return ownVenue
	}

	if venue := venueFromText(text); venue != "" {
		return venue
	}

	lower := strings.ToLower(text)

	for _, marker := range ownLocationMarkers {
		if strings.Contains(lower, marker) {
			return VenueOwnLocation
		}
	}

	for _, marker := range onlineMarkers {
		if strings.Contains(lower, marker) {
			return VenueOnline
		}
	}

	for _, att := range msg.Attachments {
		if venue := venueFromText(att.ExtractedText); venue != "" {
			return venue
		}

		if venue := venueFromRows(att.Rows); venue != "" {
			return venue
		}
	}

	return VenueFallback
}

func venueFromText(text string) string {
	for _, pattern := range venuePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		venue := strings.TrimSpace(match[1])

		// Too short to be a place, or a URL fragment caught by "location".
		if len(venue) <= 3 || strings.Contains(strings.ToLower(venue), "http") {
			continue
		}

		return venue
	}

	return ""
}

// venueFromRows reads the venue-ish column of a tabular attachment. Rows
// without a recognizable header column carry no venue.
func venueFromRows(rows [][]string) string {
	if len(rows) < 2 {
		return ""
	}

	for i, header := range rows[0] {
		h := strings.ToLower(header)

		for _, hint := range venueColumnHints {
			if !strings.Contains(h, hint) {
				continue
			}

			for _, row := range rows[1:] {
				if i < len(row) && strings.TrimSpace(row[i]) != "" {
					return strings.TrimSpace(row[i])
				}
			}
		}
	}

	return ""
}
