package workflows

import (
	"strconv"
	"strings"
)

// DefaultDelayMinutes is used when a stage has no parseable delay configured.
const DefaultDelayMinutes = 60

var delayUnitMinutes = map[string]int{
	"minute":  1,
	"minutes": 1,
	"min":     1,
	"mins":    1,
	"hour":    60,
	"hours":   60,
	"hr":      60,
	"hrs":     60,
	"day":     1440,
	"days":    1440,
}

// ParseDelayToMinutes normalizes a stored delay expression into minutes.
// Accepts a bare number (minutes) or "N unit" free text. It fails open:
// nil and unparseable input yield the default instead of an error, so a
// misconfigured stage still fires rather than wedging the scan.
func ParseDelayToMinutes(raw *string) int {
	if raw == nil {
		return DefaultDelayMinutes
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return DefaultDelayMinutes
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 0 {
			return DefaultDelayMinutes
		}
		return n
	}

	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) != 2 {
		return DefaultDelayMinutes
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return DefaultDelayMinutes
	}

	multiplier, ok := delayUnitMinutes[fields[1]]
	if !ok {
		return DefaultDelayMinutes
	}

	return n * multiplier
}
