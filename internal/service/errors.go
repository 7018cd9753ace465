package service

import "errors"

// Sentinel errors of the messaging subsystem. Handlers map these to HTTP
// statuses; anything else surfaces as a generic internal error.
var (
	// ErrSelfMessage rejects messaging yourself.
	ErrSelfMessage = errors.New("cannot message yourself")
	// ErrEmptyContent rejects messages that are empty after trimming.
	ErrEmptyContent = errors.New("message content is empty")
	// ErrReceiverNotFound rejects sends to unknown or suspended accounts.
	ErrReceiverNotFound = errors.New("receiver not found")
	// ErrNotParticipant rejects access to a thread the caller is not part of.
	ErrNotParticipant = errors.New("not a participant of this conversation")
	// ErrConversationFinalized rejects sends on a finalized conversation.
	ErrConversationFinalized = errors.New("conversation is finalized")
	// ErrInvalidCredentials rejects a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountSuspended rejects banned accounts at authentication time.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrEmailTaken rejects duplicate registrations.
	ErrEmailTaken = errors.New("email already registered")
)
