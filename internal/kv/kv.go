// Package kv is the persistent key-value collaborator used for cart state,
// the buy-now slot and the device identity. Implementations must tolerate
// missing keys (ErrKeyNotFound, never a hard failure) and survive normal
// application restarts unless explicitly scoped to a session.
package kv

import (
	"context"
	"errors"
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
