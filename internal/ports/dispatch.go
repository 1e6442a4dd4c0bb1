package ports

import (
	"fmt"

	"github.com/SwarupVishwas18/char-chitti/internal/app"
	"github.com/SwarupVishwas18/char-chitti/internal/domain"
	"github.com/SwarupVishwas18/char-chitti/internal/protocol"
)

// DispatchEvents renders app events to wire messages and routes them through
// the transport. Broadcast snapshots are built from the room at dispatch
// time, after the handler has finished mutating it.
func DispatchEvents(t Transport, roomID string, room *domain.Room, events []app.Event) error {
	for _, ev := range events {
		payload, msgType, err := encodeEvent(roomID, room, ev)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", ev.Kind, err)
		}

		if len(ev.Recipients) == 0 {
			if err := t.Broadcast(msgType, payload); err != nil {
				return fmt.Errorf("broadcast %s: %w", msgType, err)
			}
			continue
		}
		for _, playerID := range ev.Recipients {
			if err := t.SendTo(playerID, msgType, payload); err != nil {
				return fmt.Errorf("send %s to %s: %w", msgType, playerID, err)
			}
		}
	}
	return nil
}

// SendError reports a rejected action to the originating connection only.
func SendError(t Transport, playerID string, actionErr error) error {
	payload, err := protocol.EncodeError(actionErr.Error())
	if err != nil {
		return err
	}
	return t.SendTo(playerID, protocol.TypeError, payload)
}

func encodeEvent(roomID string, room *domain.Room, ev app.Event) ([]byte, string, error) {
	switch ev.Kind {
	case app.EventRoomState:
		payload, err := protocol.EncodeRoomState(protocol.Snapshot(roomID, room))
		return payload, protocol.TypeRoomState, err
	case app.EventGameStarted:
		payload, err := protocol.EncodeGameStarted()
		return payload, protocol.TypeGameStarted, err
	case app.EventHandUpdated:
		p := ev.Payload.(app.HandUpdatedPayload)
		payload, err := protocol.EncodeYourHand(p.Hand)
		return payload, protocol.TypeYourHand, err
	case app.EventWinner:
		p := ev.Payload.(app.WinnerPayload)
		payload, err := protocol.EncodeWinner(p.PlayerID, p.PlayerName, p.Entity)
		return payload, protocol.TypeWinner, err
	case app.EventRejoinToken:
		p := ev.Payload.(app.RejoinTokenPayload)
		payload, err := protocol.EncodeRejoinToken(p.Token)
		return payload, protocol.TypeRejoinToken, err
	default:
		return nil, "", fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
