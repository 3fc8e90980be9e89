package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock parses a "H:MM AM/PM" time-of-day string into 24-hour parts.
// 12 AM maps to hour 0 and 12 PM stays 12.
func ParseClock(value string) (hour, minute int, err error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(value), " "))
	parsed, err := time.Parse("3:04 PM", normalized)
	if err != nil {
		return 0, 0, fmt.Errorf("recurrence: invalid time of day %q: %w", value, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
