package server

import (
	"context"
	"sync"
)

// ServerContext tracks the lifetime of the running daemon.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext derives a cancellable context from ctx.
func NewServerContext(ctx context.Context) *ServerContext {
	ctx, cancel := context.WithCancel(ctx)
	return &ServerContext{ctx: ctx, cancel: cancel}
}

// Context is cancelled by Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Shutdown marks the daemon as stopping and cancels its context.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	sc.shutdown = true
	sc.mu.Unlock()
	sc.cancel()
}

// IsShutdown reports whether Shutdown was called or the parent context ended.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown || sc.ctx.Err() != nil
}
