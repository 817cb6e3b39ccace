// Package extract recovers structured fields (schedule, venue, registration
// link, ICS invite data) from free-form notification text.
//
// Extraction runs ordered pattern families with fall-through: each family is
// a priority chain and the first match that converts cleanly wins. A pattern
// that matches but fails conversion is treated as "no match" and the scan
// moves on; nothing here returns an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// Deadline pass runs before the event pass; an event-pattern match whose
// surrounding text carries deadline vocabulary is rejected once a deadline
// exists, so one sentence is never booked as both.
var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:last\s+date|deadline|register\s+by|registration\s+(?:closes|ends?|before|till|until))[:\s]*(\d{1,2}[-/.\s]+\d{1,2}[-/.\s]+\d{2,4})(?:[,\s]*(?:by|at|before)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
	regexp.MustCompile(`(?i)(?:last\s+date|deadline|register\s+by)[:\s]*(\d{1,2}(?:st|nd|rd|th)?\s+\w+\s+\d{2,4})(?:[,\s]*(?:by|at)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
	regexp.MustCompile(`(?i)registration[:\s]+(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})(?:\s+(?:by|at|till)\s+)?(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?`),
}

var eventPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:date|on|scheduled)[:\s]*(\d{1,2}[-/.\s]+\d{1,2}[-/.\s]+\d{2,4})(?:[,\s]*(?:at|@|time)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
	regexp.MustCompile(`(?i)(?:interview|test|assessment|exam|screening|round|talk|drive|ppt)[^\n]{0,20}?(\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\s+\d{2,4})(?:[,\s]*(?:at|by|@)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
	regexp.MustCompile(`(?i)(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})[,\s]+(?:at\s+)?(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?`),
	regexp.MustCompile(`(?i)(?:will\s+be\s+conducted\s+on|conducted\s+on|scheduled\s+on|scheduled\s+for)[:\s]*(\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\s+\d{2,4})(?:[,\s]*(?:at)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
	regexp.MustCompile(`(?i)(\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{2,4})(?:[,\s]*(?:at|@)?[,\s]*(\d{1,2}):?(\d{2})?\s*([ap]\.?m\.?)?)?`),
}

var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)duration[:\s]*(\d+)\s*(?:hours?|hrs?)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?)\s+(?:duration|long|test|exam)`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(?:-|to|till)\s*(\d{1,2}):(\d{2})`),
}

var deadlineVocabulary = []string{"register", "deadline", "last date"}

// contextLookbehind is how far before an event match the deadline-vocabulary
// check reaches, enough to see a "Last date:" label preceding the captured
// date.
const contextLookbehind = 30

const minutesPerHour = 60

var numericDate = regexp.MustCompile(`(\d{1,2})[-/.\s]+(\d{1,2})[-/.\s]+(\d{2,4})`)
var ordinalDate = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\s+(\d{2,4})`)
var monthFirstDate = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{2,4})`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// DateTimeExtractor anchors all extracted datetimes to one fixed locale.
type DateTimeExtractor struct {
	loc *time.Location
}

// NewDateTimeExtractor creates an extractor for the given location.
func NewDateTimeExtractor(loc *time.Location) *DateTimeExtractor {
	if loc == nil {
		loc = time.Local
	}

	return &DateTimeExtractor{loc: loc}
}

// DateTimes runs the deadline pass, the event pass, and the duration pass
// over the text, in that order.
func (x *DateTimeExtractor) DateTimes(text string) domain.DateTimes {
	result := domain.DateTimes{}

	for _, pattern := range deadlinePatterns {
		for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
			if parsed, ok := x.parseMatch(text, idx); ok {
				result.RegistrationDeadline = &parsed
				break
			}
		}

		if result.RegistrationDeadline != nil {
			break
		}
	}

	for _, pattern := range eventPatterns {
		for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
			if result.RegistrationDeadline != nil && nearDeadlineVocabulary(text, idx[0], idx[1]) {
				continue
			}

			if parsed, ok := x.parseMatch(text, idx); ok {
				result.EventDateTime = &parsed
				break
			}
		}

		if result.EventDateTime != nil {
			break
		}
	}

	result.DurationMinutes = extractDuration(text)

	return result
}

// nearDeadlineVocabulary checks the match span plus a short lookbehind for
// deadline wording.
func nearDeadlineVocabulary(text string, start, end int) bool {
	from := start - contextLookbehind
	if from < 0 {
		from = 0
	}

	window := strings.ToLower(text[from:end])

	for _, word := range deadlineVocabulary {
		if strings.Contains(window, word) {
			return true
		}
	}

	return false
}

// parseMatch converts one pattern match (groups: date, hour, minute, am/pm)
// into a concrete timestamp. Missing clock time defaults to 10:00; a bare
// hour below 12 is read as AM.
func (x *DateTimeExtractor) parseMatch(text string, idx []int) (time.Time, bool) {
	group := func(n int) string {
		if 2*n+1 >= len(idx) || idx[2*n] < 0 {
			return ""
		}

		return text[idx[2*n]:idx[2*n+1]]
	}

	year, month, day, ok := x.extractDate(group(1))
	if !ok {
		return time.Time{}, false
	}

	hour, minute := 10, 0

	if hourStr := group(2); hourStr != "" {
		h, err := strconv.Atoi(hourStr)
		if err != nil || h > 23 {
			return time.Time{}, false
		}

		hour = h
		minute = 0

		if minStr := group(3); minStr != "" {
			m, err := strconv.Atoi(minStr)
			if err != nil || m > 59 {
				return time.Time{}, false
			}

			minute = m
		}

		marker := strings.ToLower(strings.ReplaceAll(group(4), ".", ""))
		switch {
		case strings.HasPrefix(marker, "p") && hour < 12:
			hour += 12
		case strings.HasPrefix(marker, "a") && hour == 12:
			hour = 0
		}
	}

	return time.Date(year, month, day, hour, minute, 0, 0, x.loc), true
}

// extractDate parses the captured date string through the three-pattern
// grammar: numeric day-month-year, ordinal day + month name, and month name
// first. Two-digit years expand to 20xx. When the grammar fails, dateparse
// has a go at it before giving up.
func (x *DateTimeExtractor) extractDate(s string) (int, time.Month, int, bool) {
	if match := numericDate.FindStringSubmatch(s); match != nil {
		day, _ := strconv.Atoi(match[1])
		monthNum, _ := strconv.Atoi(match[2])
		year := expandYear(match[3])

		if monthNum >= 1 && monthNum <= 12 && validDate(year, time.Month(monthNum), day) {
			return year, time.Month(monthNum), day, true
		}

		return 0, 0, 0, false
	}

	if match := ordinalDate.FindStringSubmatch(s); match != nil {
		day, _ := strconv.Atoi(match[1])
		year := expandYear(match[3])

		if month, ok := resolveMonth(match[2]); ok && validDate(year, month, day) {
			return year, month, day, true
		}

		return x.fallbackDate(s)
	}

	if match := monthFirstDate.FindStringSubmatch(s); match != nil {
		day, _ := strconv.Atoi(match[2])
		year := expandYear(match[3])

		if month, ok := resolveMonth(match[1]); ok && validDate(year, month, day) {
			return year, month, day, true
		}
	}

	return x.fallbackDate(s)
}

func (x *DateTimeExtractor) fallbackDate(s string) (int, time.Month, int, bool) {
	parsed, err := dateparse.ParseIn(strings.TrimSpace(s), x.loc)
	if err != nil {
		return 0, 0, 0, false
	}

	return parsed.Year(), parsed.Month(), parsed.Day(), true
}

func resolveMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}

	month, ok := monthsByPrefix[name[:3]]
	if !ok {
		return 0, false
	}

	// Reject arbitrary words that happen to share a month prefix ("mayhem").
	full := strings.ToLower(month.String())
	if name != name[:3] && name != full {
		return 0, false
	}

	return month, true
}

func expandYear(s string) int {
	year, _ := strconv.Atoi(s)
	if len(s) == 2 {
		year += 2000
	}

	return year
}

func validDate(year int, month time.Month, day int) bool {
	if day < 1 || year < 1000 {
		return false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	return t.Day() == day && t.Month() == month
}

// extractDuration tries the explicit-duration patterns, then the clock
// range. A range written end-before-start yields a negative duration; it is
// reported as extracted, the caller substitutes its default.
func extractDuration(text string) *int {
	for i, pattern := range durationPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		if i == 2 {
			startH, _ := strconv.Atoi(match[1])
			startM, _ := strconv.Atoi(match[2])
			endH, _ := strconv.Atoi(match[3])
			endM, _ := strconv.Atoi(match[4])

			minutes := (endH*minutesPerHour + endM) - (startH*minutesPerHour + startM)

			return &minutes
		}

		hours, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		minutes := hours * minutesPerHour

		return &minutes
	}

	return nil
}
