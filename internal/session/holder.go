// Package session holds the identity of whoever is currently signed in.
//
// A Holder is built once per consumer (a process, or a single request) and
// passed down explicitly. Other components read it; only sign-in and
// sign-out events change it.
package session

import (
	"sync"

	"github.com/hongminglow/levelup-be/internal/models"
)

// Change is delivered to watchers once per sign-in or sign-out.
type Change struct {
	Identity models.Identity
	SignedIn bool
}

// Holder exposes the current identity, if any.
type Holder struct {
	mu       sync.RWMutex
	current  *models.Identity
	watchers map[int]chan Change
	nextID   int
}

// NewHolder returns a holder with nobody signed in.
func NewHolder() *Holder {
	return &Holder{watchers: make(map[int]chan Change)}
}

// SignedIn returns a holder already carrying id.
func SignedIn(id models.Identity) *Holder {
	h := NewHolder()
	h.current = &id
	return h
}

// Current returns the signed-in identity and whether there is one.
func (h *Holder) Current() (models.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return models.Identity{}, false
	}
	return *h.current, true
}

// SignIn replaces the current identity and notifies watchers.
func (h *Holder) SignIn(id models.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = &id
	h.broadcast(Change{Identity: id, SignedIn: true})
}

// SignOut clears the current identity and notifies watchers.
func (h *Holder) SignOut() {
	h.mu.Lock()
	defer h.mu.Unlock()
	var prev models.Identity
	if h.current != nil {
		prev = *h.current
	}
	h.current = nil
	h.broadcast(Change{Identity: prev, SignedIn: false})
}

// Watch registers for changes. The returned func releases the watcher and
// must be called once the caller loses interest.
func (h *Holder) Watch() (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Change, 8)
	h.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.watchers, id)
			close(ch)
		})
	}
}

// broadcast must be called with mu held. A watcher that stopped draining
// loses its oldest pending change rather than blocking the holder.
func (h *Holder) broadcast(c Change) {
	for _, ch := range h.watchers {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
}
