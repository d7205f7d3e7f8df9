package invite

import (
	"sort"
	"strings"
)

var attendeeHeaders = []string{"to", "cc", "from"}

// Attendees collects email addresses from the To, Cc and From headers, in
// that order, matching header names case-insensitively. Addresses are
// deduplicated case-insensitively and keep their first-seen spelling.
func Attendees(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{})
	out := []string{}
	for _, want := range attendeeHeaders {
		for _, k := range keys {
			if !strings.EqualFold(k, want) {
				continue
			}
			for _, addr := range emailRE.FindAllString(headers[k], -1) {
				lower := strings.ToLower(addr)
				if _, dup := seen[lower]; dup {
					continue
				}
				seen[lower] = struct{}{}
				out = append(out, addr)
			}
		}
	}
	return out
}
