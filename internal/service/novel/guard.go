package novel

import "sync"

// generationGuard tracks which novels have a generation in flight. It is
// scoped to an engine instance, not the process, and only spans the
// generate-and-persist sequence; reads never touch it.
type generationGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newGenerationGuard() *generationGuard {
	return &generationGuard{inFlight: make(map[string]struct{})}
}

// tryAcquire marks id as generating. It returns false without any other
// side effect when a generation is already in flight for id.
func (g *generationGuard) tryAcquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[id]; held {
		return false
	}
	g.inFlight[id] = struct{}{}
	return true
}

// release clears the in-flight mark. Callers defer it immediately after a
// successful tryAcquire so no failure path can leave the guard held.
func (g *generationGuard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, id)
}
