package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

func (g *movieGuard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func TestMovieGuard_SlotsFreedAfterRelease(t *testing.T) {
	g := newMovieGuard()

	for id := int64(1); id <= 100; id++ {
		release, ok := g.tryAcquire(id)
		require.True(t, ok)
		release()
	}
	assert.Zero(t, g.size())

	release, err := g.acquire(context.Background(), 7)
	require.NoError(t, err)
	release()
	release()
	assert.Zero(t, g.size())
}

func TestMovieGuard_FailedAcquireDoesNotLeak(t *testing.T) {
	g := newMovieGuard()

	release, ok := g.tryAcquire(1)
	require.True(t, ok)

	_, ok = g.tryAcquire(1)
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.acquire(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, 1, g.size())
	release()
	assert.Zero(t, g.size())
}

func TestMovieGuard_WaiterKeepsSlot(t *testing.T) {
	g := newMovieGuard()

	release, ok := g.tryAcquire(1)
	require.True(t, ok)

	acquired := make(chan func())
	go func() {
		next, err := g.acquire(context.Background(), 1)
		if err != nil {
			close(acquired)
			return
		}
		acquired <- next
	}()

	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		s, ok := g.slots[1]
		return ok && s.refs == 2
	}, time.Second, time.Millisecond)

	release()
	next, ok := <-acquired
	require.True(t, ok, "waiter should get the slot")
	assert.Equal(t, 1, g.size())

	_, ok = g.tryAcquire(1)
	assert.False(t, ok, "slot is still held by the waiter")

	next()
	assert.Zero(t, g.size())
}

func TestDeleteMovie_LeavesNoGuardBehind(t *testing.T) {
	ctx := context.Background()
	b := newMockBackend("Alien", "Heat")
	b.signIn(domain.RoleAdmin)
	svc := newTestService(b, Options{})
	actor := svc.ResolveSession(ctx)

	_, err := svc.ToggleLike(ctx, actor, 2)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMovie(ctx, actor, 1))
	assert.Zero(t, svc.guard.size())
}
