// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewPollID returns a random (v4) UUID string.
func NewPollID() string {
	return uuid.NewString()
}

// NewMessageID returns an id for a chat message.
func NewMessageID() string {
	return uuid.NewString()
}

// NewConnID creates a random id for a live connection: 20 hex characters.
func NewConnID() (string, error) {
	return GenerateID(10)
}
