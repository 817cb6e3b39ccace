// Package dedup guards calendar emission with idempotency keys so re-reading
// the same notification never books the same event twice.
package dedup

import (
	"strconv"
	"strings"
	"time"
)

const maxNormalizedLen = 50

// EventKey derives the idempotency key for one emission:
// normalized subject, start time in epoch milliseconds, and thread id,
// joined with "|". Equal subjects at the same start within the same thread
// always yield the same key.
func EventKey(subject string, start time.Time, threadID string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(subject) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}

		if b.Len() >= maxNormalizedLen {
			break
		}
	}

	return b.String() + "|" + strconv.FormatInt(start.UnixMilli(), 10) + "|" + threadID
}
