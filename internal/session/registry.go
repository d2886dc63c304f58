package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options control the two behaviors the original left undefined: whether
// tokens ever expire and whether a login evicts the user's other sessions.
// Both default to off, matching the source behavior.
type Options struct {
	TTL           time.Duration // zero means tokens never expire
	SingleSession bool
}

type entry struct {
	username  string
	expiresAt time.Time // zero means no expiry
}

// Registry maps opaque session tokens to usernames.
type Registry struct {
	mu   sync.RWMutex
	opts Options
	m    map[string]entry
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, m: make(map[string]entry)}
}

// Create issues a fresh token for username. Tokens are crypto-random UUIDs,
// so collisions are negligible and uniqueness is not re-checked.
func (r *Registry) Create(username string) string {
	token := "s_" + uuid.NewString()

	e := entry{username: username}
	if r.opts.TTL > 0 {
		e.expiresAt = time.Now().Add(r.opts.TTL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.SingleSession {
		for t, old := range r.m {
			if old.username == username {
				delete(r.m, t)
			}
		}
	}

	r.m[token] = e
	return token
}

// Resolve returns the username behind token. Expired entries are dropped
// lazily on lookup.
func (r *Registry) Resolve(token string) (string, bool) {
	r.mu.RLock()
	e, ok := r.m[token]
	r.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		r.mu.Lock()
		delete(r.m, token)
		r.mu.Unlock()
		return "", false
	}
	return e.username, true
}

// Destroy removes token if present. Destroying an unknown token is a no-op.
func (r *Registry) Destroy(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, token)
}
