package extract

import (
	"strings"
	"time"
)

// ICSEvent holds the fields pulled from a calendar-invite attachment. Invite
// parsing here is deliberately shallow: line-level field extraction only, no
// recurrence or multi-event support.
type ICSEvent struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

const icsDefaultSpan = time.Hour

// ParseICS extracts the first VEVENT's fields from raw invite text. Returns
// false when no parseable DTSTART is present; a missing DTEND defaults to
// one hour after the start.
func ParseICS(raw string, loc *time.Location) (ICSEvent, bool) {
	if loc == nil {
		loc = time.Local
	}

	event := ICSEvent{}

	for _, line := range unfoldICS(raw) {
		name, value := splitICSLine(line)

		switch name {
		case "SUMMARY":
			if event.Summary == "" {
				event.Summary = value
			}
		case "LOCATION":
			if event.Location == "" {
				event.Location = value
			}
		case "DESCRIPTION":
			if event.Description == "" {
				event.Description = value
			}
		case "DTSTART":
			if event.Start.IsZero() {
				if t, ok := parseICSTime(value, loc); ok {
					event.Start = t
				}
			}
		case "DTEND":
			if event.End.IsZero() {
				if t, ok := parseICSTime(value, loc); ok {
					event.End = t
				}
			}
		}
	}

	if event.Start.IsZero() {
		return ICSEvent{}, false
	}

	if event.End.IsZero() || !event.End.After(event.Start) {
		event.End = event.Start.Add(icsDefaultSpan)
	}

	return event, true
}

// unfoldICS joins continuation lines (lines starting with a space or tab)
// back onto their parent line per RFC 5545 folding.
func unfoldICS(raw string) []string {
	rawLines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	lines := make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

// splitICSLine separates "NAME;PARAM=X:value" into the bare property name
// and its value.
func splitICSLine(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", ""
	}

	name := line[:idx]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}

	value := strings.TrimSpace(line[idx+1:])
	value = strings.ReplaceAll(value, `\,`, ",")
	value = strings.ReplaceAll(value, `\n`, "\n")

	return strings.ToUpper(strings.TrimSpace(name)), value
}

// parseICSTime handles the three datetime shapes invites actually carry:
// UTC-suffixed, floating local, and all-day date.
func parseICSTime(value string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t.In(loc), true
	}

	if t, err := time.ParseInLocation("20060102T150405", value, loc); err == nil {
		return t, true
	}

	if t, err := time.ParseInLocation("20060102", value, loc); err == nil {
		return t, true
	}

	return time.Time{}, false
}
