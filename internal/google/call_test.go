package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastCaller() Caller {
	return Caller{
		Service:    "gmail",
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server error", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"forbidden wrapped", fmt.Errorf("list: %w", &googleapi.Error{Code: http.StatusForbidden}), false},
		{"transport", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestCall_RetriesTransient(t *testing.T) {
	calls := 0
	got, err := Call(context.Background(), fastCaller(), "list", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: http.StatusInternalServerError}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestCall_StopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := Call(context.Background(), fastCaller(), "get", func(context.Context) (int, error) {
		calls++
		return 0, &googleapi.Error{Code: http.StatusBadRequest}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestCall_GivesUpAfterMaxTries(t *testing.T) {
	calls := 0
	c := fastCaller()
	c.MaxTries = 2
	_, err := Call(context.Background(), c, "create", func(context.Context) (int, error) {
		calls++
		return 0, &googleapi.Error{Code: http.StatusTooManyRequests}
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}
