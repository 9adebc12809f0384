// Package pool provides a small free-list of reusable objects.
//
// Pools are not synchronized. They are meant for scratch structures (query
// stacks, traversal queues) owned by a single update loop.
package pool

// Pool hands out reusable values of type T.
type Pool[T any] struct {
	free    []T
	factory func() T
	reset   func(T)
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithReset sets a callback run on every value passed to Return.
func WithReset[T any](fn func(T)) Option[T] {
	return func(p *Pool[T]) {
		p.reset = fn
	}
}

// WithPrewarm fills the pool with n values at construction.
func WithPrewarm[T any](n int) Option[T] {
	return func(p *Pool[T]) {
		for i := 0; i < n; i++ {
			p.free = append(p.free, p.factory())
		}
	}
}

// New creates a pool that builds values with factory when empty.
func New[T any](factory func() T, opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{factory: factory}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Borrow returns a pooled value, or a new one when the pool is empty.
func (p *Pool[T]) Borrow() T {
	n := len(p.free)
	if n == 0 {
		return p.factory()
	}
	v := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return v
}

// Return puts v back into the pool after running the reset callback.
func (p *Pool[T]) Return(v T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.free = append(p.free, v)
}

// Len returns the number of idle values.
func (p *Pool[T]) Len() int {
	return len(p.free)
}
