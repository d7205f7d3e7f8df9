package scheduling_tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/invitebooker/internal/slots"
)

type intervalJSON struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
}

// parseBusy decodes a JSON array of intervals or calendar events, keeping
// input order. Interval items must be valid; event items go through busy
// derivation, which drops unusable events.
func parseBusy(raw string, loc *time.Location) ([]slots.Interval, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var items []intervalJSON
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("busy must be a JSON array: %w", err)
	}

	busy := make([]slots.Interval, 0, len(items))
	for i, item := range items {
		if isObject(item.Start) || isObject(item.End) {
			var ev slots.Event
			if err := json.Unmarshal(item.Start, &ev.Start); err != nil {
				return nil, fmt.Errorf("busy[%d].start: %w", i, err)
			}
			if err := json.Unmarshal(item.End, &ev.End); err != nil {
				return nil, fmt.Errorf("busy[%d].end: %w", i, err)
			}
			busy = append(busy, slots.DeriveBusy([]slots.Event{ev}, loc)...)
			continue
		}

		var start, end string
		if err := json.Unmarshal(item.Start, &start); err != nil {
			return nil, fmt.Errorf("busy[%d].start must be a timestamp", i)
		}
		if err := json.Unmarshal(item.End, &end); err != nil {
			return nil, fmt.Errorf("busy[%d].end must be a timestamp", i)
		}
		iv, err := parseWindow(start, end, loc)
		if err != nil {
			return nil, fmt.Errorf("busy[%d]: %w", i, err)
		}
		busy = append(busy, iv)
	}
	return busy, nil
}

func isObject(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}

func parseWindow(start, end string, loc *time.Location) (slots.Interval, error) {
	st, err := slots.ParseTimestamp(start, loc)
	if err != nil {
		return slots.Interval{}, fmt.Errorf("start: %w", err)
	}
	en, err := slots.ParseTimestamp(end, loc)
	if err != nil {
		return slots.Interval{}, fmt.Errorf("end: %w", err)
	}
	return slots.NewInterval(st, en)
}
