// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store owns every poll record.

# Live Table

Store maps poll ids to *poll.Poll:

	s := store.New(archive)
	s.Insert(p)
	p, ok := s.Get(id)
	owned := s.OwnedBy(connID)

Store only guards the map. Callers lock the poll itself before touching
its answers, room, or state.

# Archive

Archive is the append-only list of concluded polls, kept in the in-memory
database from package db:

	err := archive.Append(record)       // ErrAlreadyArchived on repeats
	recent, err := archive.Recent(10)   // newest first
*/
package store
