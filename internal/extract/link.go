package extract

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

var linkPriorityKeywords = []string{
	"register", "registration", "signup", "sign-up",
	"apply", "application", "form", "portal",
}

// LinkSelector picks the registration link out of a notification. Institutes
// that route applications through a named portal often write the portal name
// with no URL at all; that case yields a sentinel label instead of a link.
type LinkSelector struct {
	portalKeyword string
	portalLabel   string
}

// NewLinkSelector creates a selector. portalKeyword may be empty when no
// institute portal is configured.
func NewLinkSelector(portalKeyword string) *LinkSelector {
	s := &LinkSelector{portalKeyword: strings.ToLower(portalKeyword)}
	if s.portalKeyword != "" {
		s.portalLabel = strings.ToUpper(s.portalKeyword) + " Portal"
	}

	return s
}

// Select returns the best registration link for the text, or "" when the
// text has neither a URL nor a portal mention. Priority-keyword URLs beat
// the first URL found.
func (s *LinkSelector) Select(text string) string {
	urls := urlPattern.FindAllString(text, -1)

	if len(urls) == 0 {
		if s.portalKeyword != "" && strings.Contains(strings.ToLower(text), s.portalKeyword) {
			return s.portalLabel
		}

		return ""
	}

	keywords := linkPriorityKeywords
	if s.portalKeyword != "" {
		keywords = append(append([]string{}, linkPriorityKeywords...), s.portalKeyword)
	}

	for _, url := range urls {
		lower := strings.ToLower(url)

		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return trimURL(url)
			}
		}
	}

	return trimURL(urls[0])
}

// trimURL drops trailing sentence punctuation that the URL pattern drags in.
func trimURL(url string) string {
	return strings.TrimRight(url, ".,;:!?")
}
