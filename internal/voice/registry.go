package voice

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Lister enumerates the voices currently installed on the platform.
type Lister interface {
	Voices() []Voice
}

// Registry keeps the latest snapshot of the platform voice list. Readers
// always see the list as of their call; a refresh never mutates a
// snapshot that was already handed out.
type Registry struct {
	mu     sync.RWMutex
	voices []Voice

	subsMu sync.Mutex
	subs   map[int]func([]Voice)
	nextID int
}

// NewRegistry returns a registry seeded with voices.
func NewRegistry(voices ...Voice) *Registry {
	return &Registry{
		voices: clone(voices),
		subs:   make(map[int]func([]Voice)),
	}
}

// Snapshot returns a copy of the current voice list.
func (r *Registry) Snapshot() []Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.voices)
}

// Len returns the number of known voices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.voices)
}

// Set replaces the voice list and notifies subscribers.
func (r *Registry) Set(voices []Voice) {
	next := clone(voices)

	r.mu.Lock()
	r.voices = next
	r.mu.Unlock()

	log.Debug("voice list updated", "count", len(next))

	r.subsMu.Lock()
	fns := make([]func([]Voice), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subsMu.Unlock()

	for _, fn := range fns {
		fn(clone(next))
	}
}

// Refresh re-reads the list from src. A nil src is a no-op.
func (r *Registry) Refresh(src Lister) {
	if src == nil {
		return
	}
	r.Set(src.Voices())
}

// Subscribe registers fn to run after every update. The returned func
// removes the subscription.
func (r *Registry) Subscribe(fn func([]Voice)) func() {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	id := r.nextID
	r.nextID++
	r.subs[id] = fn

	return func() {
		r.subsMu.Lock()
		delete(r.subs, id)
		r.subsMu.Unlock()
	}
}

func clone(voices []Voice) []Voice {
	if voices == nil {
		return nil
	}
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}
