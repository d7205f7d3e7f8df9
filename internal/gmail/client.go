package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/invitebooker/internal/google"
	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/logging"
	"github.com/teemow/invitebooker/internal/scheduler"
)

const user = "me"

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc     *gmail.UsersService
	account string
	caller  google.Caller
	logger  *slog.Logger
}

var _ scheduler.Mail = (*Client)(nil)

// NewClient wraps an existing service.
func NewClient(svc *gmail.Service, account string, metrics *instrumentation.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:     svc.Users,
		account: account,
		caller:  google.Caller{Service: instrumentation.ServiceGmail, Metrics: metrics},
		logger:  logger.With(logging.Service(instrumentation.ServiceGmail), logging.Account(account)),
	}
}

// NewClientForAccount builds a client authenticated with provider's token
// for account.
func NewClientForAccount(ctx context.Context, provider google.TokenProvider, account string, metrics *instrumentation.Metrics, logger *slog.Logger) (*Client, error) {
	httpClient, err := google.HTTPClientForAccount(ctx, provider, account)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return NewClient(svc, account, metrics, logger), nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// FetchCandidates returns up to max messages matching query. Gmail lists
// only ids, so each id is fetched in minimal format for its internal date.
func (c *Client) FetchCandidates(ctx context.Context, query string, max int) ([]scheduler.MessageSummary, error) {
	if max <= 0 {
		return nil, nil
	}

	var refs []*gmail.Message
	pageToken := ""
	for len(refs) < max {
		req := c.svc.Messages.List(user).Q(query).MaxResults(int64(max - len(refs)))
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		res, err := google.Call(ctx, c.caller, instrumentation.OperationList, func(ctx context.Context) (*gmail.ListMessagesResponse, error) {
			return req.Context(ctx).Do()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		refs = append(refs, res.Messages...)
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	if len(refs) > max {
		refs = refs[:max]
	}

	out := make([]scheduler.MessageSummary, 0, len(refs))
	for _, ref := range refs {
		msg, err := c.get(ctx, ref.Id, "minimal")
		if err != nil {
			return nil, err
		}
		out = append(out, scheduler.MessageSummary{
			ID:           msg.Id,
			ThreadID:     msg.ThreadId,
			InternalDate: time.UnixMilli(msg.InternalDate),
		})
	}
	c.logger.DebugContext(ctx, "listed candidate messages", slog.Int("count", len(out)))
	return out, nil
}

// FetchMessage retrieves one message in full.
func (c *Client) FetchMessage(ctx context.Context, id string) (scheduler.Message, error) {
	msg, err := c.get(ctx, id, "full")
	if err != nil {
		return scheduler.Message{}, err
	}

	headers := headerMap(msg.Payload)
	out := scheduler.Message{
		ID:           msg.Id,
		InternalDate: time.UnixMilli(msg.InternalDate),
		Subject:      headerValue(headers, "Subject"),
		Body:         messageBody(msg.Payload),
		Headers:      headers,
	}

	for _, part := range calendarParts(msg.Payload) {
		data, err := c.partData(ctx, id, part)
		if err != nil {
			// The parser has other strategies; a missing attachment is not fatal.
			c.logger.WarnContext(ctx, "failed to read calendar attachment",
				logging.MessageID(id), slog.String("filename", part.Filename), logging.Err(err))
			continue
		}
		out.Calendars = append(out.Calendars, data)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, id, format string) (*gmail.Message, error) {
	msg, err := google.Call(ctx, c.caller, instrumentation.OperationGet, func(ctx context.Context) (*gmail.Message, error) {
		return c.svc.Messages.Get(user, id).Format(format).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg, nil
}

func (c *Client) partData(ctx context.Context, messageID string, part *gmail.MessagePart) ([]byte, error) {
	if part.Body == nil {
		return nil, fmt.Errorf("part %s has no body", part.PartId)
	}
	if part.Body.Data != "" {
		return decodeData(part.Body.Data)
	}
	if part.Body.AttachmentId == "" {
		return nil, fmt.Errorf("part %s has neither data nor attachment id", part.PartId)
	}

	att, err := google.Call(ctx, c.caller, instrumentation.OperationGet, func(ctx context.Context) (*gmail.MessagePartBody, error) {
		return c.svc.Messages.Attachments.Get(user, messageID, part.Body.AttachmentId).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", part.Body.AttachmentId, err)
	}
	if att.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", att.Size, MaxAttachmentSize)
	}
	return decodeData(att.Data)
}
