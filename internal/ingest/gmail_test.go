package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchQuery(t *testing.T) {
	since := time.Unix(1757906400, 0)

	query := searchQuery(since, []string{"placement", "cdc@college.edu"})

	assert.Equal(t, "is:unread after:1757906400 from:(placement OR cdc@college.edu)", query)
}

func TestSearchQuery_NoSenderFilter(t *testing.T) {
	since := time.Unix(1757906400, 0)

	query := searchQuery(since, nil)

	assert.Equal(t, "is:unread after:1757906400", query)
}
