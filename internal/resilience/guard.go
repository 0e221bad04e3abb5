package resilience

import "context"

// Guard runs fn through cb and returns its result. A nil breaker runs fn
// directly.
func Guard[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	if cb == nil {
		return fn(ctx)
	}
	err := cb.ExecuteContext(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
