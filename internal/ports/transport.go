// Package ports declares the interfaces the room core requires from its
// hosting substrate.
package ports

// Transport is the delivery surface a hosting substrate must provide for one
// room: targeted unicast and room-wide broadcast. The substrate guarantees
// reliable in-order delivery per connection; the core performs no
// deduplication or reordering of its own.
type Transport interface {
	// SendTo delivers a payload to a single player's connection. Sends to
	// players that are not currently connected are dropped silently.
	SendTo(playerID string, msgType string, payload []byte) error
	// Broadcast delivers a payload to every connection in the room.
	Broadcast(msgType string, payload []byte) error
}
