package batch

import (
	"context"
	"fmt"
	"strings"
)

// Item statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Item is the outcome of one entry in a batch.
type Item[T any] struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result T      `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates the items of a batch.
type Report[T any] struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Items      []Item[T] `json:"items"`
}

// ParseIDs reads a parameter that is either a single string, a
// comma-separated string or an array of strings. Duplicates are dropped,
// first occurrence wins.
func ParseIDs(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var raw []string
	switch v := param.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		ids = append(ids, s)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return ids, nil
}

// Run calls fn for each id in order and collects the outcomes. Once ctx is
// done the remaining ids are reported as failed without calling fn.
func Run[T any](ctx context.Context, ids []string, fn func(ctx context.Context, id string) (T, error)) Report[T] {
	report := Report[T]{Total: len(ids), Items: make([]Item[T], 0, len(ids))}

	for _, id := range ids {
		item := Item[T]{ID: id, Status: StatusSuccess}
		if err := ctx.Err(); err != nil {
			item.Status = StatusError
			item.Error = err.Error()
		} else {
			res, err := fn(ctx, id)
			item.Result = res
			if err != nil {
				item.Status = StatusError
				item.Error = err.Error()
			}
		}

		if item.Status == StatusSuccess {
			report.Successful++
		} else {
			report.Failed++
		}
		report.Items = append(report.Items, item)
	}

	return report
}
