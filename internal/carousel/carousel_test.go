package carousel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var roles = []string{
	"Tech Enthusiast",
	"Problem Solver",
	"Lifelong Learner",
	"Programmer",
}

func TestNew_RejectsEmpty(t *testing.T) {
	_, err := New([]string{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestAt_TickCountWraps(t *testing.T) {
	c, err := New(roles)
	require.NoError(t, err)

	tests := []struct {
		tick int
		want string
	}{
		{0, "Tech Enthusiast"},
		{1, "Problem Solver"},
		{2, "Lifelong Learner"},
		{3, "Programmer"},
		{4, "Tech Enthusiast"},
		{9, "Problem Solver"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.At(tt.tick), "tick %d", tt.tick)
	}
}

func TestNext_MatchesAt(t *testing.T) {
	c, err := New(roles)
	require.NoError(t, err)

	for n := 1; n <= 10; n++ {
		got := c.Next()
		assert.Equal(t, c.At(n), got)
		assert.Equal(t, n%len(roles), c.Index())
	}
}

func TestPrev_WrapsToLast(t *testing.T) {
	c, err := New(roles)
	require.NoError(t, err)

	assert.Equal(t, "Programmer", c.Prev())
	assert.Equal(t, 3, c.Index())
	assert.Equal(t, "Lifelong Learner", c.Prev())
}

func TestSelect(t *testing.T) {
	c, err := New(roles)
	require.NoError(t, err)

	got, err := c.Select(2)
	require.NoError(t, err)
	assert.Equal(t, "Lifelong Learner", got)
	assert.Equal(t, "Lifelong Learner", c.Current())

	for _, i := range []int{-1, 4} {
		_, err := c.Select(i)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
	assert.Equal(t, 2, c.Index(), "failed select must not move the cursor")
}

func TestNew_CopiesItems(t *testing.T) {
	items := []string{"a", "b"}
	c, err := New(items)
	require.NoError(t, err)

	items[0] = "changed"
	assert.Equal(t, "a", c.Current())
}

func TestRotator_AdvancesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := New(roles)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	r := NewRotator(c, 5*time.Millisecond, func(s string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})
	require.NoError(t, r.Start(context.Background()))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 5
	}, time.Second, time.Millisecond)

	r.Stop()

	mu.Lock()
	got := append([]string(nil), seen...)
	mu.Unlock()
	for i, s := range got {
		assert.Equal(t, roles[(i+1)%len(roles)], s)
	}

	// no more callbacks once stopped
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Len(t, seen, len(got))
	mu.Unlock()
}

func TestRotator_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := New(roles)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRotator(c, time.Hour, nil)
	require.NoError(t, r.Start(ctx))

	cancel()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("rotator did not exit after cancel")
	}
	assert.Equal(t, 0, c.Index())
}

func TestRotator_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := New(roles)
	require.NoError(t, err)

	r := NewRotator(c, time.Hour, nil)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.ErrorIs(t, r.Start(context.Background()), ErrStarted)
}

func TestRotator_StopWithoutStart(t *testing.T) {
	c, err := New(roles)
	require.NoError(t, err)

	r := NewRotator(c, 0, nil)
	r.Stop()
	assert.Equal(t, DefaultPeriod, r.period)
}
