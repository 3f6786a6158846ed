// Package kvstore is the durable key/value boundary the stores write through.
// Both the cart and the session persist their full serialized state after
// every mutation and hydrate from it on construction.
package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Adapter is the persistence contract. Read returns ErrNotFound when the key
// has never been written. Write replaces the whole value; an empty value is a
// valid stored state, not a delete.
type Adapter interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}
