package services

import (
	"strings"
	"time"
)

// CursorLayout is the wire format of timeline cursors: ISO-8601 UTC with
// millisecond precision.
const CursorLayout = "2006-01-02T15:04:05.000Z"

const (
	DefaultTimelineLimit = 10
	MaxTimelineLimit     = 50

	DefaultListLimit = 20
	MaxListLimit     = 100

	DefaultCommentLimit = 20
	MaxCommentLimit     = 100

	// MaxBatchStatusIDs caps batch like/follow status lookups.
	MaxBatchStatusIDs = 100
)

// ClampLimit applies def to non-positive limits and caps the result at max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// ParseCursor decodes a cursor. An empty cursor means "from the newest row".
func ParseCursor(cursor string) (*time.Time, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	t = t.UTC().Truncate(time.Millisecond)
	return &t, nil
}

// FormatCursor encodes t as a cursor.
func FormatCursor(t time.Time) string {
	return t.UTC().Format(CursorLayout)
}

// normalizeIDs trims, drops blanks and duplicates, and caps the list at
// MaxBatchStatusIDs while keeping the caller's order.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == MaxBatchStatusIDs {
			break
		}
	}
	return out
}

// fillStatus returns a map with every id as a key, true where hits says so.
func fillStatus(ids []string, hits map[string]bool) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = hits[id]
	}
	return out
}
