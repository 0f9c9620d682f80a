package session

import (
	"sync"
	"time"
)

// Session identifies the acting user for one request. It is threaded
// explicitly through every operation; there is no ambient auth state.
type Session struct {
	UserID   string
	Email    string
	Location *time.Location
}

// Zone returns the user's local time zone, defaulting to UTC.
func (s Session) Zone() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Event marks a session lifecycle change.
type Event string

const (
	Began Event = "began"
	Ended Event = "ended"
)

// Registry delivers session-change notifications to subscribers through an
// explicit callback interface.
type Registry struct {
	mu   sync.Mutex
	subs []func(Session, Event)
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Subscribe(fn func(Session, Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

func (r *Registry) Notify(s Session, e Event) {
	r.mu.Lock()
	subs := make([]func(Session, Event), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(s, e)
	}
}
