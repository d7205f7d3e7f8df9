package google

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"

	"github.com/teemow/invitebooker/internal/instrumentation"
)

// DefaultMaxTries bounds attempts per Google API call.
const DefaultMaxTries = 3

// Caller runs Google API calls for one service with retries, a span per
// call and operation metrics.
type Caller struct {
	Service  string
	Metrics  *instrumentation.Metrics
	MaxTries uint
	// NewBackOff defaults to an exponential backoff starting at 500ms.
	NewBackOff func() backoff.BackOff
}

func (c Caller) backOff() backoff.BackOff {
	if c.NewBackOff != nil {
		return c.NewBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

// Call runs fn until it succeeds, fails permanently or runs out of tries.
// 429, 5xx and transport errors are retried; other API errors are not.
func Call[T any](ctx context.Context, c Caller, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, c.Service, operation)
	defer span.End()

	tries := c.MaxTries
	if tries == 0 {
		tries = DefaultMaxTries
	}

	attempts := 0
	start := time.Now()
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		v, err := fn(ctx)
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			instrumentation.AddSpanEvent(span, "retry",
				attribute.Int(instrumentation.SpanAttrAttempts, attempts),
				attribute.Int(instrumentation.SpanAttrStatusCode, StatusCode(err)),
				attribute.String("retry.wait", wait.String()))
			c.Metrics.RecordGoogleAPIRetry(ctx, c.Service, operation)
		}),
	)

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrAttempts, attempts))
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.Metrics.RecordGoogleAPIOperation(ctx, c.Service, operation, status, time.Since(start))
	return res, err
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}

// StatusCode returns the HTTP status of a Google API error, or 0.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
