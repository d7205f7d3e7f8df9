package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Attribute keys shared across the codebase.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyAccount   = "account"
	KeyMessageID = "message_id"
	KeyCalendar  = "calendar_id"
	KeyOutcome   = "outcome"
	KeyUserHash  = "user_hash"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values. Duplicated from instrumentation, which imports this package.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithAccount returns a logger with the account attribute set.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// WithMessage returns a logger scoped to one email message.
func WithMessage(logger *slog.Logger, messageID string) *slog.Logger {
	return logger.With(slog.String(KeyMessageID, messageID))
}

func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

func MessageID(id string) slog.Attr {
	return slog.String(KeyMessageID, id)
}

func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, id)
}

// Outcome records how a message ended up in the scheduling state machine.
func Outcome(outcome string) slog.Attr {
	return slog.String(KeyOutcome, outcome)
}

func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns an error attribute. A nil error yields an empty group, which
// slog drops, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable hash of an address so log lines can be
// correlated without exposing it. Case and surrounding space are ignored.
func AnonymizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns an attribute holding the anonymized address.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// ExtractDomain returns the part after the @, or "" for malformed input.
func ExtractDomain(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || parts[0] == "" {
		return ""
	}
	return strings.ToLower(parts[1])
}

// Domain returns an attribute with the address domain, which has far lower
// cardinality than the address itself.
func Domain(email string) slog.Attr {
	return slog.String("user_domain", ExtractDomain(email))
}

// AttendeeDomains summarizes attendees by domain for logging.
func AttendeeDomains(attendees []string) slog.Attr {
	seen := make(map[string]struct{}, len(attendees))
	domains := make([]string, 0, len(attendees))
	for _, a := range attendees {
		d := ExtractDomain(a)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	return slog.Any("attendee_domains", domains)
}
