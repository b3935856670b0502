// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-pick-live/models"
)

// MaxHistory caps how many records Recent returns.
const MaxHistory = 10

var ErrAlreadyArchived = errors.New("poll already archived")

// Archive is the append-only record of concluded polls.
type Archive struct {
	db *sql.DB
}

// NewArchive wraps a database that already has the archive schema.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Append stores rec. A second record for the same poll is rejected with
// ErrAlreadyArchived.
func (a *Archive) Append(rec models.ArchivedResult) error {
	options, err := json.Marshal(rec.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	res, err := a.db.Exec(`
		INSERT INTO archived_poll (poll_id, question, options, results, total_responses, time_limit, reason, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (poll_id) DO NOTHING
	`, rec.ID, rec.Question, string(options), string(results), rec.TotalResponses, rec.TimeLimit, rec.Reason, rec.EndTime.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert archived poll: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyArchived, rec.ID)
	}
	return nil
}

// Recent returns up to limit records, newest first by termination time.
// limit is clamped to 1..MaxHistory.
func (a *Archive) Recent(limit int) ([]models.ArchivedResult, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}

	rows, err := a.db.Query(`
		SELECT poll_id, question, options, results, total_responses, time_limit, reason, ended_at
		FROM archived_poll
		ORDER BY ended_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	records := []models.ArchivedResult{}
	for rows.Next() {
		var rec models.ArchivedResult
		var options, results string
		var endedAt int64
		if err := rows.Scan(&rec.ID, &rec.Question, &options, &results, &rec.TotalResponses, &rec.TimeLimit, &rec.Reason, &endedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived poll: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results of %s: %w", rec.ID, err)
		}
		rec.EndTime = time.Unix(0, endedAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	return records, nil
}

// Count returns how many polls have been archived.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM archived_poll").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count archive: %w", err)
	}
	return n, nil
}

// CountFor returns how many records exist for pollID (zero or one).
func (a *Archive) CountFor(pollID string) (int, error) {
	var n int
	err := a.db.QueryRow("SELECT COUNT(*) FROM archived_poll WHERE poll_id = ?", pollID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count archive: %w", err)
	}
	return n, nil
}
