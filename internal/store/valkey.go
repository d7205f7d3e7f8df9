package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyPrefix = "invitebooker:"

// Valkey is a Store backed by a Valkey (or Redis) server.
type Valkey struct {
	client valkey.Client
	prefix string
	closed atomic.Bool
}

// OpenValkey connects to the server at addr.
func OpenValkey(ctx context.Context, addr string) (*Valkey, error) {
	if addr == "" {
		return nil, errors.New("valkey address is empty")
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}
	v := &Valkey{client: client, prefix: valkeyPrefix}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}
	return v, nil
}

func (v *Valkey) seenKey(id string) string {
	return v.prefix + "seen:" + id
}

func (v *Valkey) checkpointKey(key string) string {
	return v.prefix + "checkpoint:" + key
}

func (v *Valkey) HasSeen(ctx context.Context, id string) (bool, error) {
	if v.closed.Load() {
		return false, ErrClosed
	}
	n, err := v.client.Do(ctx, v.client.B().Exists().Key(v.seenKey(id)).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to query seen message: %w", err)
	}
	return n > 0, nil
}

func (v *Valkey) MarkSeen(ctx context.Context, id string) error {
	if v.closed.Load() {
		return ErrClosed
	}
	cmd := v.client.B().Set().Key(v.seenKey(id)).Value("1").Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}
	return nil
}

func (v *Valkey) LastChecked(ctx context.Context, key string) (time.Time, bool, error) {
	if v.closed.Load() {
		return time.Time{}, false, ErrClosed
	}
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(v.checkpointKey(key)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid checkpoint %q: %w", raw, err)
	}
	return t, true, nil
}

func (v *Valkey) SetLastChecked(ctx context.Context, key string, t time.Time) error {
	if v.closed.Load() {
		return ErrClosed
	}
	cmd := v.client.B().Set().Key(v.checkpointKey(key)).Value(t.UTC().Format(time.RFC3339Nano)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store checkpoint: %w", err)
	}
	return nil
}

// Close disconnects from the server. Later calls return ErrClosed.
func (v *Valkey) Close() error {
	if v.closed.Swap(true) {
		return nil
	}
	v.client.Close()
	return nil
}
