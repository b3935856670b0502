// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire and domain types shared by the server.

# Frames

Every WebSocket frame, in both directions, is an Envelope:

	{"event": "submit-answer", "data": {"pollId": "...", "answer": "Red"}}

# Request Types

Payloads of inbound events:

  - CreatePollRequest: question, options, timeLimit
  - PollRef: pollId (bare string or object) for start-poll, end-poll, get-results
  - JoinPollRequest: pollId, studentName
  - SubmitAnswerRequest: pollId, answer
  - RemoveStudentRequest: pollId, studentSocketId
  - ChatRequest: sender, message, isTeacher

# Response Types

Payloads of outbound events:

  - ConnectedResponse: socketId
  - PollCreatedResponse: pollId, poll
  - PollSnapshotResponse: pollId, poll (poll-started, poll-joined)
  - ResultsResponse: pollId, results (poll-updated, poll-ended, poll-results)
  - PollNotFoundResponse, RemovedResponse: pollId
  - ErrorResponse: error, message

# Domain Types

  - PollView: poll metadata and lifecycle state
  - Results: live tally snapshot
  - ChatMessage: relayed chat line
  - ArchivedResult: final record of a terminated poll

# Constants

Poll states:

	StateCreated = "created"
	StateActive  = "active"
	StateEnded   = "ended"

Termination reasons:

	EndManual  = "manual"
	EndExpired = "expired"
*/
package models
