package storage

import (
	"context"
	"errors"
)

// RetryOnce runs fn and, when it fails with ErrStorage, runs it exactly one
// more time. Other errors and context cancellation return immediately.
func RetryOnce[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil || !errors.Is(err, ErrStorage) {
		return result, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, err
	}
	return fn(ctx)
}
