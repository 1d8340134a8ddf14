// Package kv provides the key-value persistence the submission store sits on.
package kv

import "context"

// Store is a byte-oriented key-value store. Get reports absence through the
// boolean rather than an error. Each Set replaces the whole value atomically.
// Deleting a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
