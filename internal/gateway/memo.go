package gateway

import (
	"context"
	"sync"
)

// memo caches the first successful result of a fetch. Concurrent callers
// block on the in-flight fetch instead of issuing their own. Failed fetches
// are not cached, so a later call tries again.
type memo[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
}

func (m *memo[T]) get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return m.value, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	m.value, m.done = v, true
	return v, nil
}
