// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/danielhkuo/quickly-pick-live/ident"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/poll"
	"github.com/danielhkuo/quickly-pick-live/registry"
	"github.com/danielhkuo/quickly-pick-live/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("poll not found")
	ErrUnauthorized = errors.New("not the poll's presenter")
	ErrStale        = errors.New("poll not in required state")
)

// Publisher delivers one event to a set of connections. It must not block.
type Publisher interface {
	Publish(connIDs []string, event string, data any)
}

type Options struct {
	DefaultTimeLimit int           // seconds, used when a create request has none
	MaxTimeLimit     int           // seconds
	Retention        time.Duration // how long ended polls stay joinable
}

// Coordinator owns the poll lifecycle.
//
// Every change to a poll, and every publish of that poll's snapshots,
// happens under the poll's lock. Lock order is poll, then registry or
// store; no code path holds two poll locks at once.
type Coordinator struct {
	store    *store.Store
	sessions *registry.Registry
	pub      Publisher
	opts     Options

	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer

	mu        sync.Mutex
	evictions map[string]*time.Timer
	closed    bool
}

func New(s *store.Store, sessions *registry.Registry, pub Publisher, opts Options) *Coordinator {
	if opts.DefaultTimeLimit <= 0 {
		opts.DefaultTimeLimit = 60
	}
	if opts.MaxTimeLimit < opts.DefaultTimeLimit {
		opts.MaxTimeLimit = opts.DefaultTimeLimit
	}
	return &Coordinator{
		store:     s,
		sessions:  sessions,
		pub:       pub,
		opts:      opts,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		evictions: make(map[string]*time.Timer),
	}
}

func (c *Coordinator) lookup(pollID string) (*poll.Poll, error) {
	p, ok := c.store.Get(pollID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pollID)
	}
	return p, nil
}

// CreatePoll inserts an inactive poll owned by presenter.
func (c *Coordinator) CreatePoll(req models.CreatePollRequest, presenter string) (models.PollView, error) {
	limit := req.TimeLimit
	if limit == 0 {
		limit = c.opts.DefaultTimeLimit
	}
	if limit < 0 || limit > c.opts.MaxTimeLimit {
		return models.PollView{}, fmt.Errorf("%w: timeLimit must be between 1 and %d seconds", ErrInvalidInput, c.opts.MaxTimeLimit)
	}

	p, err := poll.New(ident.NewPollID(), req.Question, req.Options, limit, presenter, c.now())
	if err != nil {
		return models.PollView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !c.store.Insert(p) {
		return models.PollView{}, fmt.Errorf("poll id collision: %s", p.ID)
	}

	p.Lock()
	view := p.View()
	p.Unlock()

	slog.Info("poll created", "poll_id", p.ID, "presenter", presenter, "options", len(p.Options), "time_limit", limit)
	return view, nil
}

// StartPoll activates a created poll and arms its deadline.
func (c *Coordinator) StartPoll(pollID, caller string) error {
	p, err := c.lookup(pollID)
	if err != nil {
		return err
	}

	p.Lock()
	defer p.Unlock()

	if p.Presenter != caller {
		return fmt.Errorf("%w: start %s", ErrUnauthorized, pollID)
	}
	now := c.now()
	if !p.Start(now) {
		return fmt.Errorf("%w: cannot start %s poll", ErrStale, p.State())
	}
	p.SetDeadline(c.afterFunc(time.Duration(p.TimeLimit)*time.Second, func() { c.expire(p) }))

	c.pub.Publish(p.Subscribers(), models.EventPollStarted, models.PollSnapshotResponse{
		PollID: p.ID,
		Poll:   p.Snapshot(now),
	})

	slog.Info("poll started", "poll_id", p.ID, "time_limit", p.TimeLimit)
	return nil
}

// JoinPoll subscribes connID to the poll's room and returns the current
// snapshot, whether or not the poll is running. The display name may be
// empty.
func (c *Coordinator) JoinPoll(pollID, name, connID string) (models.Results, error) {
	p, err := c.lookup(pollID)
	if err != nil {
		return models.Results{}, err
	}
	name = strings.TrimSpace(name)

	// Session and room change together under the poll lock, so a
	// concurrent RemoveStudent sees both or neither.
	p.Lock()
	prev, had := c.sessions.Join(connID, registry.Session{PollID: pollID, Name: name, JoinedAt: c.now()})
	p.Subscribe(connID)
	snap := p.Snapshot(c.now())
	p.Unlock()

	// Leaving the old poll takes its lock, never while holding this one.
	if had && prev.PollID != pollID {
		c.detach(prev.PollID, connID)
	}

	slog.Info("student joined poll", "poll_id", pollID, "conn_id", connID, "name", name)
	return snap, nil
}

// SubmitAnswer records connID's answer, replacing any earlier one, and
// rebroadcasts the tally.
func (c *Coordinator) SubmitAnswer(pollID, connID, answer string) error {
	// Nothing to record; dropped like any other unusable submission.
	if answer == "" {
		return fmt.Errorf("%w: empty answer from %s", ErrStale, connID)
	}

	p, err := c.lookup(pollID)
	if err != nil {
		return err
	}

	p.Lock()
	defer p.Unlock()

	// Checked under the poll lock so a concurrent disconnect either
	// happens first (and we drop) or erases this answer afterwards.
	s, ok := c.sessions.Get(connID)
	if !ok || s.PollID != pollID {
		return fmt.Errorf("%w: %s has not joined %s", ErrStale, connID, pollID)
	}
	if !p.IsActive() {
		return fmt.Errorf("%w: poll %s is %s", ErrStale, pollID, p.State())
	}

	p.Record(connID, answer)
	c.broadcastUpdate(p)

	slog.Debug("answer submitted", "poll_id", pollID, "conn_id", connID, "name", s.Name)
	return nil
}

// EndPoll terminates an active poll on its presenter's request.
func (c *Coordinator) EndPoll(pollID, caller string) error {
	p, err := c.lookup(pollID)
	if err != nil {
		return err
	}

	p.Lock()
	defer p.Unlock()

	if p.Presenter != caller {
		return fmt.Errorf("%w: end %s", ErrUnauthorized, pollID)
	}
	if !c.terminate(p, models.EndManual) {
		return fmt.Errorf("%w: poll %s is %s", ErrStale, pollID, p.State())
	}
	return nil
}

// expire is the deadline callback. It does nothing if the poll already ended.
func (c *Coordinator) expire(p *poll.Poll) {
	p.Lock()
	defer p.Unlock()

	c.terminate(p, models.EndExpired)
}

// terminate is the only way a poll ends. The caller holds p's lock. It
// reports false when the poll was not active, which is how a manual end
// and an expiry racing each other archive exactly once.
func (c *Coordinator) terminate(p *poll.Poll, reason string) bool {
	if !p.Finish() {
		return false
	}

	now := c.now()
	final := p.Snapshot(now)
	if err := c.store.Archive().Append(p.Summary(final, now, reason)); err != nil {
		slog.Error("failed to archive poll", "poll_id", p.ID, "error", err)
	}

	c.pub.Publish(p.Subscribers(), models.EventPollEnded, models.ResultsResponse{
		PollID:  p.ID,
		Results: final,
	})
	c.scheduleEviction(p.ID)

	slog.Info("poll ended", "poll_id", p.ID, "reason", reason, "total_responses", final.TotalResponses)
	return true
}

// RemoveStudent erases target's answer and membership on the presenter's
// request and tells target it was removed.
func (c *Coordinator) RemoveStudent(pollID, target, caller string) error {
	p, err := c.lookup(pollID)
	if err != nil {
		return err
	}

	p.Lock()
	defer p.Unlock()

	if p.Presenter != caller {
		return fmt.Errorf("%w: remove student from %s", ErrUnauthorized, pollID)
	}
	if target == "" || target == p.Presenter {
		return fmt.Errorf("%w: invalid student %q", ErrInvalidInput, target)
	}
	if !p.IsSubscribed(target) {
		return fmt.Errorf("%w: %s is not in poll %s", ErrStale, target, pollID)
	}

	c.sessions.RemoveIf(target, pollID)
	p.Forget(target)
	p.Unsubscribe(target)

	c.pub.Publish([]string{target}, models.EventRemoved, models.RemovedResponse{PollID: pollID})
	c.broadcastUpdate(p)

	slog.Info("student removed", "poll_id", pollID, "conn_id", target)
	return nil
}

// HandleDisconnect cleans up after a closed connection. Calling it for an
// unknown connection does nothing.
func (c *Coordinator) HandleDisconnect(connID string) {
	if s, ok := c.sessions.Remove(connID); ok {
		c.detach(s.PollID, connID)
		slog.Info("student left poll", "poll_id", s.PollID, "conn_id", connID, "joined_for", c.now().Sub(s.JoinedAt).Round(time.Second))
	}

	// Nobody else can ever start a poll whose presenter is gone.
	for _, p := range c.store.OwnedBy(connID) {
		p.Lock()
		if p.State() == models.StateCreated {
			c.store.Remove(p.ID)
			slog.Info("discarded unstarted poll", "poll_id", p.ID)
		}
		p.Unsubscribe(connID)
		p.Unlock()
	}
}

// detach erases connID's answer and membership in pollID and
// rebroadcasts the tally. The poll may already be gone.
func (c *Coordinator) detach(pollID, connID string) {
	p, ok := c.store.Get(pollID)
	if !ok {
		return
	}

	p.Lock()
	defer p.Unlock()

	p.Forget(connID)
	p.Unsubscribe(connID)
	c.broadcastUpdate(p)
}

// GetResults returns the poll's current snapshot.
func (c *Coordinator) GetResults(pollID string) (models.Results, error) {
	p, err := c.lookup(pollID)
	if err != nil {
		return models.Results{}, err
	}

	p.Lock()
	defer p.Unlock()
	return p.Snapshot(c.now()), nil
}

// RelayChat sends a chat message to the caller's room. A caller without a
// session is treated as a presenter and reaches every poll it owns.
func (c *Coordinator) RelayChat(connID string, req models.ChatRequest) (models.ChatMessage, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	var polls []*poll.Poll
	var sender string
	isTeacher := false
	if s, ok := c.sessions.Get(connID); ok {
		if p, ok := c.store.Get(s.PollID); ok {
			polls = append(polls, p)
		}
		sender = s.Name
	} else {
		polls = c.store.OwnedBy(connID)
		sender = "Teacher"
		isTeacher = true
	}
	if len(polls) == 0 {
		return models.ChatMessage{}, fmt.Errorf("%w: %s has no room to chat in", ErrStale, connID)
	}

	if label := strings.TrimSpace(req.Sender); label != "" {
		sender = label
	}
	if sender == "" {
		sender = "Student"
	}

	msg := models.ChatMessage{
		ID:        req.ID,
		Sender:    sender,
		Message:   body,
		Timestamp: req.Timestamp,
		IsTeacher: isTeacher,
	}
	if msg.ID == "" {
		msg.ID = ident.NewMessageID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = c.now().UnixMilli()
	}

	// A presenter sits in every room it owns; deliver once.
	recipients := mapset.NewThreadUnsafeSet[string]()
	for _, p := range polls {
		p.Lock()
		recipients.Append(p.Subscribers()...)
		p.Unlock()
	}

	c.pub.Publish(recipients.ToSlice(), models.EventChatMessage, msg)
	return msg, nil
}

// History returns up to limit archived polls, newest first.
func (c *Coordinator) History(limit int) ([]models.ArchivedResult, error) {
	return c.store.Archive().Recent(limit)
}

// broadcastUpdate sends the current snapshot to p's room. Caller holds p's lock.
func (c *Coordinator) broadcastUpdate(p *poll.Poll) {
	c.pub.Publish(p.Subscribers(), models.EventPollUpdated, models.ResultsResponse{
		PollID:  p.ID,
		Results: p.Snapshot(c.now()),
	})
}

// scheduleEviction drops an ended poll from the table after the retention
// period. Caller holds the poll's lock.
func (c *Coordinator) scheduleEviction(pollID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.opts.Retention <= 0 {
		c.store.Remove(pollID)
		return
	}

	c.evictions[pollID] = c.afterFunc(c.opts.Retention, func() {
		c.store.Remove(pollID)

		c.mu.Lock()
		delete(c.evictions, pollID)
		c.mu.Unlock()

		slog.Debug("poll evicted", "poll_id", pollID)
	})
}

// Close stops every pending deadline and eviction timer.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	for id, t := range c.evictions {
		t.Stop()
		delete(c.evictions, id)
	}
	c.mu.Unlock()

	for _, p := range c.store.All() {
		p.Lock()
		p.StopDeadline()
		p.Unlock()
	}
}
