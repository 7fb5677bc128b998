// ABOUTME: Time helpers for feed metadata: itunes:duration parsing and year fallback
// ABOUTME: Provides the lossy-but-always-succeeding publish date heuristics

package timeutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// yearPattern matches a plausible 4-digit year in free text (2000-2099).
var yearPattern = regexp.MustCompile(`20\d{2}`)

// DurationSeconds converts an itunes:duration value to whole seconds.
// Accepts HH:MM:SS, MM:SS, and bare SS forms. Returns 0 and false when the
// text is empty or not numeric.
func DurationSeconds(duration string) (int, bool) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, false
	}

	parts := strings.Split(duration, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// YearFallback searches texts in order for a 4-digit year and synthesizes
// January 1st of that year in UTC. Used when an item's date elements are
// missing or unparseable.
func YearFallback(texts ...string) (time.Time, bool) {
	for _, text := range texts {
		match := yearPattern.FindString(text)
		if match == "" {
			continue
		}
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
