package sources

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// knownDateLayouts are tried in order when normalizing a provider's raw
// date string to YYYY-MM-DD.
var knownDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// normalizeDate converts a provider's raw date representation to
// YYYY-MM-DD, or nil when it cannot be parsed — dates are never passed
// through raw.
func normalizeDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range knownDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			s := t.Format("2006-01-02")
			return &s
		}
	}
	return nil
}

var locationHeuristic = regexp.MustCompile(`(?i)\b(?:in|at)\s+([A-Z][a-zA-Z.]+(?:\s+[A-Z][a-zA-Z.]+){0,3}(?:,\s*[A-Z]{2})?)\b`)

// detectLocation applies a heuristic over a title string. Titles
// without a detectable location yield nil, never an empty string.
func detectLocation(title string) *string {
	m := locationHeuristic.FindStringSubmatch(title)
	if len(m) < 2 {
		return nil
	}
	loc := strings.TrimSpace(m[1])
	if loc == "" {
		return nil
	}
	return &loc
}

// isoDurationPattern parses ISO-8601 durations like PT1H2M3S.
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 duration to H:MM:SS (when hours
// are present) or M:SS otherwise. Unparseable input returns "".
func parseISODuration(iso string) string {
	m := isoDurationPattern.FindStringSubmatch(iso)
	if m == nil {
		return ""
	}
	h, _ := strconv.Atoi(orZero(m[1]))
	min, _ := strconv.Atoi(orZero(m[2]))
	s, _ := strconv.Atoi(orZero(m[3]))
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, s)
	}
	return fmt.Sprintf("%d:%02d", min, s)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
