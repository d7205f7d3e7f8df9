package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverValkey = "valkey"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store remembers processed message IDs and poll checkpoints.
type Store interface {
	HasSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
	LastChecked(ctx context.Context, key string) (time.Time, bool, error)
	SetLastChecked(ctx context.Context, key string, t time.Time) error
	Close() error
}

// Drivers lists the supported backends.
func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverSQLite, DriverValkey}
}

// Open returns the backend named by driver. dsn is a file path for file and
// sqlite, and a host:port address for valkey. It is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(dsn)
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverValkey:
		return OpenValkey(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
