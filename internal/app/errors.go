package app

import "errors"

// Error strings double as the user-facing `error` message sent back to the
// originating connection, so they are written for players, not logs.
var (
	// Authorization: a non-owner attempted an owner-only action.
	ErrSettingsNotOwner  = errors.New("Only owner can change settings")
	ErrStartNotOwner     = errors.New("Only owner can start the game")
	ErrPlayAgainNotOwner = errors.New("Only owner can start a new round")

	// State: the action is invalid for the current phase.
	ErrGameInProgress = errors.New("Game already started")
	ErrSettingsLocked = errors.New("Cannot change settings during game")

	// Capacity.
	ErrRoomFull = errors.New("Room is full")

	// Validation.
	ErrTooFewEntities  = errors.New("Need at least 2 entity names")
	ErrInvalidPassMode = errors.New("Invalid pass mode")
	ErrTooFewPlayers   = errors.New("Need at least 2 players to start")
	ErrBadPayload      = errors.New("Invalid message payload")

	// Turn violation.
	ErrNotYourTurn = errors.New("It's not your turn!")

	// Claim rejection.
	ErrClaimRejected = errors.New("Invalid win claim: not 4 matching chits!")

	// Rejoin.
	ErrUnknownPlayer = errors.New("Unknown player")
	ErrInvalidToken  = errors.New("Invalid rejoin token")
)
