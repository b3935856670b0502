// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package poll holds the poll entity and its tally computation.
package poll

import (
	"errors"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/danielhkuo/quickly-pick-live/models"
)

// Bounds on the number of non-empty options a poll may have
const (
	MinOptions = 2
	MaxOptions = 6
)

var (
	ErrBlankQuestion  = errors.New("question is required")
	ErrTooFewOptions  = errors.New("at least 2 non-empty options are required")
	ErrTooManyOptions = errors.New("at most 6 options are allowed")
	ErrInvalidLimit   = errors.New("timeLimit must be positive")
	ErrMissingOwner   = errors.New("presenter connection is required")
)

// Poll is one question-and-options round.
//
// ID, Question, Options, TimeLimit, Presenter and CreatedAt never change
// after New and may be read without the lock. Everything else must be
// accessed between Lock and Unlock.
type Poll struct {
	mu sync.Mutex

	ID        string
	Question  string
	Options   []string
	TimeLimit int // seconds
	Presenter string
	CreatedAt time.Time

	state     string
	startTime time.Time
	answers   map[string]string
	room      mapset.Set[string]
	deadline  *time.Timer
}

// New validates the inputs and returns a poll in the created state with
// its presenter already subscribed to the room. Blank options are
// dropped; duplicates are kept.
func New(id, question string, options []string, timeLimit int, presenter string, now time.Time) (*Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrBlankQuestion
	}
	if presenter == "" {
		return nil, ErrMissingOwner
	}
	if timeLimit <= 0 {
		return nil, ErrInvalidLimit
	}

	labels := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			labels = append(labels, opt)
		}
	}
	if len(labels) < MinOptions {
		return nil, ErrTooFewOptions
	}
	if len(labels) > MaxOptions {
		return nil, ErrTooManyOptions
	}

	p := &Poll{
		ID:        id,
		Question:  question,
		Options:   labels,
		TimeLimit: timeLimit,
		Presenter: presenter,
		CreatedAt: now,
		state:     models.StateCreated,
		answers:   make(map[string]string),
		room:      mapset.NewThreadUnsafeSet[string](),
	}
	p.room.Add(presenter)
	return p, nil
}

// Lock guards every unexported field. Hold it for any method below.
func (p *Poll) Lock() { p.mu.Lock() }

// Unlock releases the poll lock.
func (p *Poll) Unlock() { p.mu.Unlock() }

// State returns one of models.StateCreated, StateActive or StateEnded.
func (p *Poll) State() string { return p.state }

// IsActive reports whether the poll accepts answers.
func (p *Poll) IsActive() bool { return p.state == models.StateActive }

// Start moves a created poll to active. It reports false for any other state.
func (p *Poll) Start(now time.Time) bool {
	if p.state != models.StateCreated {
		return false
	}
	p.state = models.StateActive
	p.startTime = now
	return true
}

// SetDeadline stores the timer that will expire the poll.
func (p *Poll) SetDeadline(t *time.Timer) {
	p.deadline = t
}

// Finish moves an active poll to ended and stops its deadline timer.
// It reports false if the poll was not active, so only one caller ever
// wins the transition.
func (p *Poll) Finish() bool {
	if p.state != models.StateActive {
		return false
	}
	p.state = models.StateEnded
	p.StopDeadline()
	return true
}

// StopDeadline cancels a pending deadline. A timer that already fired is
// harmless because the expiry path rechecks the state.
func (p *Poll) StopDeadline() {
	if p.deadline != nil {
		p.deadline.Stop()
		p.deadline = nil
	}
}

// Record stores connID's answer, replacing any earlier one.
func (p *Poll) Record(connID, answer string) {
	p.answers[connID] = answer
}

// Forget deletes connID's answer and reports whether there was one.
func (p *Poll) Forget(connID string) bool {
	if _, ok := p.answers[connID]; !ok {
		return false
	}
	delete(p.answers, connID)
	return true
}

// Subscribe adds connID to the room that receives this poll's broadcasts.
func (p *Poll) Subscribe(connID string) { p.room.Add(connID) }

// Unsubscribe removes connID from the room.
func (p *Poll) Unsubscribe(connID string) { p.room.Remove(connID) }

// IsSubscribed reports whether connID is in the room.
func (p *Poll) IsSubscribed(connID string) bool { return p.room.Contains(connID) }

// Subscribers returns the room members in no particular order.
func (p *Poll) Subscribers() []string {
	return p.room.ToSlice()
}

// Snapshot computes the current tally.
//
// Every declared option starts at zero and each answer naming an option
// increments it. TotalResponses is the number of recorded answers, so
// answers that match no option count there but in no bucket.
func (p *Poll) Snapshot(now time.Time) models.Results {
	tally := make(map[string]int, len(p.Options))
	for _, opt := range p.Options {
		tally[opt] = 0
	}
	for _, answer := range p.answers {
		if _, ok := tally[answer]; ok {
			tally[answer]++
		}
	}

	return models.Results{
		Question:       p.Question,
		Options:        append([]string(nil), p.Options...),
		Tally:          tally,
		TotalResponses: len(p.answers),
		TimeRemaining:  p.timeRemaining(now),
		IsActive:       p.IsActive(),
	}
}

func (p *Poll) timeRemaining(now time.Time) int {
	if !p.IsActive() {
		return 0
	}
	elapsed := int(now.Sub(p.startTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return max(0, p.TimeLimit-elapsed)
}

// View returns the poll's metadata for its presenter.
func (p *Poll) View() models.PollView {
	var started *time.Time
	if !p.startTime.IsZero() {
		t := p.startTime
		started = &t
	}
	return models.PollView{
		ID:              p.ID,
		Question:        p.Question,
		Options:         append([]string(nil), p.Options...),
		TimeLimit:       p.TimeLimit,
		State:           p.state,
		IsActive:        p.IsActive(),
		StartTime:       started,
		TeacherSocketID: p.Presenter,
		CreatedAt:       p.CreatedAt,
	}
}

// Summary builds the archive record from the final snapshot.
func (p *Poll) Summary(final models.Results, endedAt time.Time, reason string) models.ArchivedResult {
	return models.ArchivedResult{
		ID:             p.ID,
		Question:       p.Question,
		Options:        final.Options,
		Results:        final.Tally,
		TotalResponses: final.TotalResponses,
		TimeLimit:      p.TimeLimit,
		EndTime:        endedAt,
		Reason:         reason,
	}
}
