package services

import "errors"

// Precondition violations surfaced to the caller. Race losses and
// idempotent no-ops are absorbed internally and only logged.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyQueued  = errors.New("user already waiting in queue")
	ErrAlreadyInMatch = errors.New("user already has an active game")
	ErrNoActiveGame   = errors.New("user has no active game")
	ErrNotParticipant = errors.New("user is not a participant of this game")
	ErrOpponentGone   = errors.New("opponent is no longer waiting on this game")

	// ErrBotMissing means the reserved bot account row is absent. That
	// is a deployment defect, not a transient condition.
	ErrBotMissing = errors.New("bot account is not provisioned")

	// errRaced marks a conditional update that found its precondition
	// already invalidated by a concurrent writer. The matcher skips the
	// affected pairing; the next tick is the retry.
	errRaced = errors.New("state changed concurrently")
)
