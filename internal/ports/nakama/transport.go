package nakama

import (
	"github.com/SwarupVishwas18/char-chitti/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

// opCodeFor maps a protocol message type to its wire op code.
func opCodeFor(msgType string) int64 {
	switch msgType {
	case protocol.TypeRoomState:
		return OpRoomState
	case protocol.TypeYourHand:
		return OpYourHand
	case protocol.TypeError:
		return OpError
	case protocol.TypeGameStarted:
		return OpGameStarted
	case protocol.TypeWinner:
		return OpWinner
	case protocol.TypeRejoinToken:
		return OpRejoinToken
	default:
		return OpError
	}
}

// msgTypeFor maps an inbound op code to its protocol message type.
func msgTypeFor(opCode int64) string {
	switch opCode {
	case OpJoin:
		return protocol.TypeJoin
	case OpUpdateSettings:
		return protocol.TypeUpdateSettings
	case OpStartGame:
		return protocol.TypeStartGame
	case OpPassChit:
		return protocol.TypePassChit
	case OpClaimWin:
		return protocol.TypeClaimWin
	case OpPlayAgain:
		return protocol.TypePlayAgain
	case OpRejoin:
		return protocol.TypeRejoin
	default:
		return ""
	}
}

// dispatcherTransport adapts the Nakama match dispatcher to the room
// transport surface.
type dispatcherTransport struct {
	dispatcher runtime.MatchDispatcher
	presences  map[string]runtime.Presence
}

func (dt *dispatcherTransport) SendTo(playerID string, msgType string, payload []byte) error {
	presence, ok := dt.presences[playerID]
	if !ok {
		// Retained but disconnected player; their state is redelivered on
		// reconnect.
		return nil
	}
	return dt.dispatcher.BroadcastMessage(opCodeFor(msgType), payload, []runtime.Presence{presence}, nil, true)
}

func (dt *dispatcherTransport) Broadcast(msgType string, payload []byte) error {
	return dt.dispatcher.BroadcastMessage(opCodeFor(msgType), payload, nil, nil, true)
}
