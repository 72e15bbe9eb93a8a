package metadata

import (
	"context"
)

// Repository is durable key/value storage for the credential pair and the
// user snapshot. Get returns (nil, nil) for a missing key and Delete of a
// missing key is not an error. Writes are last-write-wins.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Batcher is implemented by backends that can write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// SetAll writes every pair, in one transaction when the backend supports it.
func SetAll(ctx context.Context, r Repository, values map[string][]byte) error {
	if b, ok := r.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every key, in one transaction when the backend supports
// it. Without batching it keeps going after a failure and returns the first error.
func DeleteAll(ctx context.Context, r Repository, keys ...string) error {
	if b, ok := r.(Batcher); ok {
		return b.DeleteMany(ctx, keys...)
	}
	var first error
	for _, k := range keys {
		if err := r.Delete(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GetString is Get for string values; a missing key yields "".
func GetString(ctx context.Context, r Repository, key string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
