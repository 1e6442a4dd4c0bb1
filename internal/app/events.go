package app

// EventKind identifies emitted room events for transport dispatch.
type EventKind string

const (
	// EventRoomState broadcasts the redacted snapshot; the transport builds
	// the projection from the room at dispatch time.
	EventRoomState EventKind = "room_state"
	// EventGameStarted is the advisory broadcast sent when a deal happens.
	EventGameStarted EventKind = "game_started"
	// EventHandUpdated delivers a player's full hand; always private.
	EventHandUpdated EventKind = "your_hand"
	// EventWinner announces a validated win claim.
	EventWinner EventKind = "winner"
	// EventRejoinToken privately delivers a signed re-bind token.
	EventRejoinToken EventKind = "rejoin_token"
)

// Event is a room event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type HandUpdatedPayload struct {
	PlayerID string
	Hand     []string
}

type WinnerPayload struct {
	PlayerID   string
	PlayerName string
	Entity     string
}

type RejoinTokenPayload struct {
	PlayerID string
	Token    string
}
