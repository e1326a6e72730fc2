package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var shorthandPattern = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// parseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := shorthandPattern.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * day, nil
	case "w":
		return time.Duration(value) * 7 * day, nil
	case "mo":
		return time.Duration(value) * 30 * day, nil
	case "y":
		return time.Duration(value) * 365 * day, nil
	default:
		return 0, fmt.Errorf("invalid time unit: %s", matches[2])
	}
}
