// Package classify builds the evaluation surface for a message and gates it
// on placement-keyword relevance. Messages failing the gate terminate
// processing before any extraction runs.
package classify

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// skippedElements are HTML containers whose text content is never visible.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// StripHTML reduces an HTML email body to its visible text. Block-ish
// boundaries collapse to single spaces; the engine only does substring and
// regex matching, so layout does not need to survive.
func StripHTML(body string) string {
	if body == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(body))

	var (
		b    strings.Builder
		skip string
	)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedElements[string(name)] {
				skip = string(name)
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == skip {
				skip = ""
			}
		case html.TextToken:
			if skip == "" {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// Surface is the combined text a message is evaluated over. Full preserves
// original casing for the word-boundary regex passes; Lower serves the
// substring keyword tests.
type Surface struct {
	Full  string
	Lower string
}

// NewSurface concatenates subject, plain body, and stripped HTML body into
// one evaluation surface.
func NewSurface(msg domain.Message) Surface {
	full := msg.Subject + " " + msg.PlainBody + " " + StripHTML(msg.HTMLBody)

	return Surface{
		Full:  full,
		Lower: strings.ToLower(full),
	}
}
