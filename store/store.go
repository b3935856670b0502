// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sync"

	"github.com/danielhkuo/quickly-pick-live/poll"
)

// Store is the table of live polls plus the archive of concluded ones.
//
// The table lock only guards the map. Mutating a poll takes that poll's
// own lock, so unrelated polls never contend. Store methods never take a
// poll lock, which lets callers use them while holding one.
type Store struct {
	mu      sync.RWMutex
	polls   map[string]*poll.Poll
	archive *Archive
}

func New(archive *Archive) *Store {
	return &Store{
		polls:   make(map[string]*poll.Poll),
		archive: archive,
	}
}

func (s *Store) Archive() *Archive {
	return s.archive
}

// Insert adds p to the table. It reports false if the id is taken.
func (s *Store) Insert(p *poll.Poll) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[p.ID]; ok {
		return false
	}
	s.polls[p.ID] = p
	return true
}

func (s *Store) Get(id string) (*poll.Poll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[id]
	return p, ok
}

// Remove drops a poll from the table. Its id stops resolving.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.polls, id)
}

// OwnedBy returns every poll whose presenter is connID.
func (s *Store) OwnedBy(connID string) []*poll.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*poll.Poll
	for _, p := range s.polls {
		if p.Presenter == connID {
			owned = append(owned, p)
		}
	}
	return owned
}

// All returns every poll in the table.
func (s *Store) All() []*poll.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*poll.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		all = append(all, p)
	}
	return all
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.polls)
}
