package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Poll state constants
const (
	StateCreated = "created"
	StateActive  = "active"
	StateEnded   = "ended"
)

// Termination reasons
const (
	EndManual  = "manual"
	EndExpired = "expired"
)

// Inbound events
const (
	EventCreatePoll    = "create-poll"
	EventStartPoll     = "start-poll"
	EventJoinPoll      = "join-poll"
	EventSubmitAnswer  = "submit-answer"
	EventEndPoll       = "end-poll"
	EventRemoveStudent = "remove-student"
	EventGetResults    = "get-results"
	EventChatMessage   = "chat-message"
)

// Outbound events
const (
	EventConnected    = "connected"
	EventPollCreated  = "poll-created"
	EventPollStarted  = "poll-started"
	EventPollJoined   = "poll-joined"
	EventPollNotFound = "poll-not-found"
	EventPollUpdated  = "poll-updated"
	EventPollEnded    = "poll-ended"
	EventPollResults  = "poll-results"
	EventRemoved      = "removed-from-poll"
	EventError        = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Request types

type CreatePollRequest struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"timeLimit,omitempty"`
}

// PollRef carries a poll id. Clients send either a bare JSON string or
// an object with a pollId field.
type PollRef struct {
	PollID string `json:"pollId"`
}

func (p *PollRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		p.PollID = id
		return nil
	}

	type plain PollRef
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.New("pollId must be a string or an object with pollId")
	}
	*p = PollRef(v)
	return nil
}

type JoinPollRequest struct {
	PollID      string `json:"pollId"`
	StudentName string `json:"studentName"`
}

type SubmitAnswerRequest struct {
	PollID string `json:"pollId"`
	Answer string `json:"answer"`
}

type RemoveStudentRequest struct {
	PollID          string `json:"pollId"`
	StudentSocketID string `json:"studentSocketId"`
}

// ChatRequest is an inbound chat message. ID and Timestamp are optional.
type ChatRequest struct {
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
	IsTeacher bool   `json:"isTeacher"`
}

// Response types

type ConnectedResponse struct {
	SocketID string `json:"socketId"`
}

type PollCreatedResponse struct {
	PollID string   `json:"pollId"`
	Poll   PollView `json:"poll"`
}

// PollSnapshotResponse is sent for poll-started and poll-joined.
type PollSnapshotResponse struct {
	PollID string  `json:"pollId"`
	Poll   Results `json:"poll"`
}

// ResultsResponse is sent for poll-updated, poll-ended and poll-results.
type ResultsResponse struct {
	PollID  string  `json:"pollId"`
	Results Results `json:"results"`
}

type PollNotFoundResponse struct {
	PollID string `json:"pollId"`
}

type RemovedResponse struct {
	PollID string `json:"pollId"`
}

// Domain types

// PollView is the full poll as returned to its presenter.
type PollView struct {
	ID              string     `json:"id"`
	Question        string     `json:"question"`
	Options         []string   `json:"options"`
	TimeLimit       int        `json:"timeLimit"`
	State           string     `json:"state"`
	IsActive        bool       `json:"isActive"`
	StartTime       *time.Time `json:"startTime"`
	TeacherSocketID string     `json:"teacherSocketId"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Results is the snapshot broadcast to a poll's room.
// TotalResponses counts every recorded answer, including answers that
// match no option, so it can exceed the sum of Tally.
type Results struct {
	Question       string         `json:"question"`
	Options        []string       `json:"options"`
	Tally          map[string]int `json:"results"`
	TotalResponses int            `json:"totalResponses"`
	TimeRemaining  int            `json:"timeRemaining"`
	IsActive       bool           `json:"isActive"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
	IsTeacher bool   `json:"isTeacher"`
}

// ArchivedResult is the immutable record of a terminated poll.
type ArchivedResult struct {
	ID             string         `json:"id"`
	Question       string         `json:"question"`
	Options        []string       `json:"options"`
	Results        map[string]int `json:"results"`
	TotalResponses int            `json:"totalResponses"`
	TimeLimit      int            `json:"timeLimit"`
	EndTime        time.Time      `json:"endTime"`
	Reason         string         `json:"reason"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
