package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/invitebooker/internal/slots"
)

// parseHeaderFlags turns repeated "Name: value" or "Name=value" flags into
// a header map. Repeated names are joined with ", " the way mail clients
// fold recipient lists.
func parseHeaderFlags(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		if !ok || strings.Contains(name, "=") {
			name, value, ok = strings.Cut(v, "=")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: expected Name: value", v)
		}
		value = strings.TrimSpace(value)
		if prev, dup := headers[name]; dup && prev != "" {
			value = prev + ", " + value
		}
		headers[name] = value
	}
	return headers, nil
}

// parseBusyFlags parses repeated start/end intervals.
func parseBusyFlags(values []string, loc *time.Location) ([]slots.Interval, error) {
	busy := make([]slots.Interval, 0, len(values))
	for _, v := range values {
		iv, err := slots.ParseInterval(v, loc)
		if err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	return busy, nil
}
