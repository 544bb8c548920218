package memo

import "sync"

// Group deduplicates concurrent derivations of the same key: while one
// computation is in flight, identical keys wait for and share its result.
// Nothing is retained once the computation finishes — this is a
// deduplication optimization for a single render pass, not a cache, so
// per-request isolation is preserved.
type Group struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

func NewGroup() *Group {
	return &Group{calls: make(map[string]*call)}
}

// Do runs fn once per concurrent set of identical keys and hands every waiter
// the same result.
func (g *Group) Do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}

	c := &call{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err
}
