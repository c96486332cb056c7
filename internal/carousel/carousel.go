// Package carousel cycles a cursor through a fixed ordered list, either on
// demand (prev/next/select) or on a timer through a Rotator.
package carousel

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrEmpty      = errors.New("carousel: no items")
	ErrOutOfRange = errors.New("carousel: index out of range")
)

// Carousel is safe for concurrent use.
type Carousel[T any] struct {
	mu    sync.Mutex
	items []T
	index int
}

// New copies items so later changes to the caller's slice do not move the cursor's target.
func New[T any](items []T) (*Carousel[T], error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	cp := make([]T, len(items))
	copy(cp, items)
	return &Carousel[T]{items: cp}, nil
}

func (c *Carousel[T]) Len() int {
	return len(c.items)
}

func (c *Carousel[T]) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Carousel[T]) Current() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[c.index]
}

// At returns the item shown after n ticks from the start of the list.
func (c *Carousel[T]) At(n int) T {
	return c.items[mod(n, len(c.items))]
}

// Next advances the cursor, wrapping to the first item after the last.
func (c *Carousel[T]) Next() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = (c.index + 1) % len(c.items)
	return c.items[c.index]
}

// Prev moves the cursor back, wrapping to the last item from the first.
func (c *Carousel[T]) Prev() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = (c.index - 1 + len(c.items)) % len(c.items)
	return c.items[c.index]
}

func (c *Carousel[T]) Select(i int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.items))
	}
	c.index = i
	return c.items[i], nil
}

func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}
