package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// MaxAttachmentSize caps calendar attachments at 25MB.
const MaxAttachmentSize = 25 * 1024 * 1024

var calendarMimeTypes = map[string]bool{
	"text/calendar":        true,
	"application/ics":      true,
	"application/x-ics":    true,
	"text/x-vcalendar":     true,
	"application/calendar": true,
}

// walkParts visits part and all of its descendants depth first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

// decodeData decodes Gmail's base64url payloads, falling back to standard
// base64 for senders that pad differently.
func decodeData(s string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if data, err = base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	data, err = base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message data: %w", err)
	}
	return data, nil
}

// headerMap flattens the top-level headers. Repeated names are joined with
// ", " so every To and Cc address survives.
func headerMap(payload *gmail.MessagePart) map[string]string {
	out := make(map[string]string)
	if payload == nil {
		return out
	}
	for _, h := range payload.Headers {
		if prev, ok := out[h.Name]; ok && prev != "" {
			out[h.Name] = prev + ", " + h.Value
			continue
		}
		out[h.Name] = h.Value
	}
	return out
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// messageBody returns the first text/plain body, or the first text/html
// body when the message has no plain part.
func messageBody(payload *gmail.MessagePart) string {
	if body := findBody(payload, "text/plain"); body != "" {
		return body
	}
	return findBody(payload, "text/html")
}

func findBody(payload *gmail.MessagePart, mimeType string) string {
	var body string
	walkParts(payload, func(part *gmail.MessagePart) {
		if body != "" || part.Filename != "" || !strings.EqualFold(part.MimeType, mimeType) {
			return
		}
		if part.Body == nil || part.Body.Data == "" {
			return
		}
		if data, err := decodeData(part.Body.Data); err == nil {
			body = string(data)
		}
	})
	return body
}

// calendarParts returns parts that carry an iCalendar object, either by
// MIME type or by an .ics filename.
func calendarParts(payload *gmail.MessagePart) []*gmail.MessagePart {
	var parts []*gmail.MessagePart
	walkParts(payload, func(part *gmail.MessagePart) {
		mt := strings.ToLower(strings.TrimSpace(strings.SplitN(part.MimeType, ";", 2)[0]))
		if calendarMimeTypes[mt] || strings.HasSuffix(strings.ToLower(part.Filename), ".ics") {
			parts = append(parts, part)
		}
	})
	return parts
}
