package classify

import (
	"strings"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// Classifier decides whether a message concerns placements at all.
type Classifier struct {
	keywords []string
}

// New creates a classifier over the given keyword list. Keywords are stored
// lower-cased; matching is substring presence, no stemming.
func New(keywords []string) *Classifier {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}

	return &Classifier{keywords: lowered}
}

// Relevant reports whether any keyword occurs in the subject, plain body, or
// HTML body. A single occurrence in any one field qualifies.
func (c *Classifier) Relevant(msg domain.Message) bool {
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.PlainBody)
	htmlBody := strings.ToLower(msg.HTMLBody)

	for _, k := range c.keywords {
		if strings.Contains(subject, k) || strings.Contains(body, k) || strings.Contains(htmlBody, k) {
			return true
		}
	}

	return false
}
