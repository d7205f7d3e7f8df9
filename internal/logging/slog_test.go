package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value string
	}{
		{"operation", Operation("poll"), KeyOperation, "poll"},
		{"service", Service("gmail"), KeyService, "gmail"},
		{"account", Account("work"), KeyAccount, "work"},
		{"message", MessageID("18c2f"), KeyMessageID, "18c2f"},
		{"calendar", Calendar("primary"), KeyCalendar, "primary"},
		{"outcome", Outcome("booked_at_proposed"), KeyOutcome, "booked_at_proposed"},
		{"tool", Tool("suggest_slots"), KeyTool, "suggest_slots"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.String())
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	assert.Equal(t, "", Err(nil).Key)
}

func TestErr_NilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("done", Err(nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	_, ok := line[KeyError]
	assert.False(t, ok)
}

func TestWithMessage(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithAccount(WithOperation(WithMessage(base, "m-1"), "process"), "work")
	logger.Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "m-1", line[KeyMessageID])
	assert.Equal(t, "process", line[KeyOperation])
	assert.Equal(t, "work", line[KeyAccount])
}

func TestAnonymizeEmail(t *testing.T) {
	got := AnonymizeEmail("jane@example.com")
	assert.Len(t, got, len("user:")+16)
	assert.Equal(t, got, AnonymizeEmail("  Jane@Example.com "))
	assert.NotEqual(t, got, AnonymizeEmail("john@example.com"))
	assert.NotContains(t, got, "jane")
	assert.Equal(t, "", AnonymizeEmail(""))

	assert.Equal(t, KeyUserHash, UserHash("a@b.c").Key)
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@Example.com", "example.com"},
		{"no-at-sign", ""},
		{"a@b@c", ""},
		{"@example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractDomain(tt.email), tt.email)
	}
	assert.Equal(t, "example.com", Domain("x@example.com").Value.String())
}

func TestAttendeeDomains(t *testing.T) {
	attr := AttendeeDomains([]string{"a@x.com", "b@X.com", "c@y.org", "bogus"})
	assert.Equal(t, []string{"x.com", "y.org"}, attr.Value.Any())
}
