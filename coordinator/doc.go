// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator runs live polls: creation, start, answers, removal,
termination and archival.

# Lifecycle

	created → active → ended

StartPoll arms a one-shot timer for the poll's time limit. EndPoll and the
timer both go through the same termination step, which only succeeds for
an active poll, so each poll is archived once. Ended polls stay readable
for Options.Retention before they are evicted.

# Errors

Operations return errors wrapping one of:

  - ErrInvalidInput: the request itself is malformed
  - ErrNotFound: no such poll
  - ErrUnauthorized: caller is not the poll's presenter
  - ErrStale: the poll or the caller's session is in the wrong state

# Delivery

Snapshots go out through a Publisher while the poll's lock is held, so
every connection sees one poll's updates in the order they happened.
*/
package coordinator
