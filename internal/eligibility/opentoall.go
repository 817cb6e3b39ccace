package eligibility

import (
	"regexp"
	"strings"
)

// openToAllPatterns catch structural phrasings the plain vocabulary misses,
// e.g. "all students who applied" or "everyone is welcome".
var openToAllPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)all\s+(?:students?|candidates?|participants?)\s+(?:who|that)\s+(?:applied|registered|opted|enrolled)`),
	regexp.MustCompile(`(?i)(?:every|each)\s+(?:student|candidate|participant)\s+who\s+(?:applied|registered|opted)`),
	regexp.MustCompile(`(?i)open\s+for\s+all`),
	regexp.MustCompile(`(?i)everyone\s+is\s+(?:invited|welcome|eligible)`),
}

// OpenToAllDetector recognizes blanket-eligibility notices. Either layer is
// sufficient: a vocabulary substring hit or a structural pattern match.
type OpenToAllDetector struct {
	vocabulary []string
}

// NewOpenToAllDetector builds a detector over the given phrase vocabulary.
func NewOpenToAllDetector(vocabulary []string) *OpenToAllDetector {
	lowered := make([]string, 0, len(vocabulary))
	for _, phrase := range vocabulary {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase != "" {
			lowered = append(lowered, phrase)
		}
	}

	return &OpenToAllDetector{vocabulary: lowered}
}

// IsOpenToAll reports whether the text declares the notice open to everyone.
func (d *OpenToAllDetector) IsOpenToAll(text string) bool {
	lower := strings.ToLower(text)

	for _, phrase := range d.vocabulary {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	for _, pattern := range openToAllPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	return false
}
