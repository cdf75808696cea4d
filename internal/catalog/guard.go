package catalog

import (
	"context"
	"sync"
)

// movieGuard hands out one slot per movie id. A slot lives only while someone
// holds it or is waiting for it.
type movieGuard struct {
	mu    sync.Mutex
	slots map[int64]*guardSlot
}

type guardSlot struct {
	ch   chan struct{}
	refs int
}

func newMovieGuard() *movieGuard {
	return &movieGuard{slots: make(map[int64]*guardSlot)}
}

func (g *movieGuard) ref(id int64) *guardSlot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[id]
	if !ok {
		s = &guardSlot{ch: make(chan struct{}, 1)}
		g.slots[id] = s
	}
	s.refs++
	return s
}

func (g *movieGuard) unref(id int64, s *guardSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(g.slots, id)
	}
}

// tryAcquire takes the slot for id without waiting.
func (g *movieGuard) tryAcquire(id int64) (release func(), ok bool) {
	s := g.ref(id)
	select {
	case s.ch <- struct{}{}:
		return g.releaser(id, s), true
	default:
		g.unref(id, s)
		return nil, false
	}
}

// acquire waits for the slot for id or for ctx to end.
func (g *movieGuard) acquire(ctx context.Context, id int64) (release func(), err error) {
	s := g.ref(id)
	select {
	case s.ch <- struct{}{}:
		return g.releaser(id, s), nil
	case <-ctx.Done():
		g.unref(id, s)
		return nil, ctx.Err()
	}
}

func (g *movieGuard) releaser(id int64, s *guardSlot) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			g.unref(id, s)
		})
	}
}
