package carousel

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultPeriod is how long each role stays on screen.
const DefaultPeriod = 3000 * time.Millisecond

var ErrStarted = errors.New("carousel: rotator already started")

// Rotator advances a Carousel on a fixed period and hands each new item to a
// callback. It runs until Stop is called or the context passed to Start ends.
type Rotator[T any] struct {
	carousel *Carousel[T]
	period   time.Duration
	onTick   func(T)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewRotator[T any](c *Carousel[T], period time.Duration, onTick func(T)) *Rotator[T] {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Rotator[T]{
		carousel: c,
		period:   period,
		onTick:   onTick,
		done:     make(chan struct{}),
	}
}

func (r *Rotator[T]) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrStarted
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	go r.run(ctx)
	return nil
}

func (r *Rotator[T]) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// a tick and a cancel can be ready together; cancel wins
			if ctx.Err() != nil {
				return
			}
			item := r.carousel.Next()
			if r.onTick != nil {
				r.onTick(item)
			}
		}
	}
}

// Stop halts the rotator and blocks until its goroutine has exited. No
// callback runs after Stop returns. Stop on a rotator that never started is
// a no-op.
func (r *Rotator[T]) Stop() {
	r.mu.Lock()
	started, cancel := r.started, r.cancel
	r.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-r.done
}

// Done is closed once the rotator goroutine has exited.
func (r *Rotator[T]) Done() <-chan struct{} {
	return r.done
}
