package tx

import "sync"

// onceCell publishes a lazily computed value across goroutines exactly
// once. Racing first callers may redundantly compute the same value but
// every caller observes the single published result.
type onceCell[T any] struct {
	once sync.Once
	val  T
}

func (c *onceCell[T]) get(compute func() T) T {
	c.once.Do(func() {
		c.val = compute()
	})
	return c.val
}
