package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr bool
	}{
		{name: "single string", input: "m1", want: []string{"m1"}},
		{name: "comma separated", input: "m1, m2,,m3", want: []string{"m1", "m2", "m3"}},
		{name: "array", input: []any{"m1", "m2"}, want: []string{"m1", "m2"}},
		{name: "string slice", input: []string{"m1"}, want: []string{"m1"}},
		{name: "duplicates dropped", input: []any{"m1", "m2", "m1"}, want: []string{"m1", "m2"}},
		{name: "nil", input: nil, wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "only commas", input: " , ,", wantErr: true},
		{name: "empty array", input: []any{}, wantErr: true},
		{name: "non-string element", input: []any{"m1", 2}, wantErr: true},
		{name: "empty element", input: []any{"m1", " "}, wantErr: true},
		{name: "wrong type", input: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input, "message_ids")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "message_ids")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun(t *testing.T) {
	var called []string
	report := Run(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, id string) (int, error) {
		called = append(called, id)
		if id == "b" {
			return -1, errors.New("boom")
		}
		return len(called), nil
	})

	assert.Equal(t, []string{"a", "b", "c"}, called)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Items, 3)
	assert.Equal(t, Item[int]{ID: "a", Status: StatusSuccess, Result: 1}, report.Items[0])
	assert.Equal(t, Item[int]{ID: "b", Status: StatusError, Result: -1, Error: "boom"}, report.Items[1])
	assert.Equal(t, 3, report.Items[2].Result)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var called []string
	report := Run(ctx, []string{"a", "b", "c"}, func(_ context.Context, id string) (string, error) {
		called = append(called, id)
		cancel()
		return id, nil
	})

	assert.Equal(t, []string{"a"}, called)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, context.Canceled.Error(), report.Items[2].Error)
}
