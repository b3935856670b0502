// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package registry tracks which poll each live connection has joined.
package registry

import (
	"sync"
	"time"
)

// Session is a connection's poll membership. PollID is a plain reference:
// the poll it names may already be gone from the store.
type Session struct {
	PollID   string
	Name     string
	JoinedAt time.Time
}

// Registry maps connection ids to at most one Session each.
// It never calls out while holding its lock, so callers may use it while
// holding a poll lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func New() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Join stores s for connID and returns the session it replaced, if any.
func (r *Registry) Join(connID string, s Session) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.sessions[connID]
	r.sessions[connID] = s
	return prev, ok
}

func (r *Registry) Get(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	return s, ok
}

// Remove deletes connID's session and returns it.
func (r *Registry) Remove(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return s, ok
}

// RemoveIf deletes connID's session only when it belongs to pollID.
func (r *Registry) RemoveIf(connID, pollID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok || s.PollID != pollID {
		return false
	}
	delete(r.sessions, connID)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
