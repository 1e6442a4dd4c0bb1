// Package protocol defines the JSON wire format shared by every hosting
// substrate: client message kinds, server message kinds, and the redacted
// room snapshot projection. Field names follow the original client contract.
package protocol

import (
	"encoding/json"

	"github.com/SwarupVishwas18/char-chitti/internal/app"
)

// Client -> Server message kinds.
const (
	TypeJoin           = "join"
	TypeUpdateSettings = "update_settings"
	TypeStartGame      = "start_game"
	TypePassChit       = "pass_chit"
	TypeClaimWin       = "claim_win"
	TypePlayAgain      = "play_again"
	TypeRejoin         = "rejoin"
)

// Server -> Client message kinds.
const (
	TypeRoomState   = "room_state"
	TypeYourHand    = "your_hand"
	TypeError       = "error"
	TypeGameStarted = "game_started"
	TypeWinner      = "winner"
	TypeRejoinToken = "rejoin_token"
)

// ClientMessage is the decoded inbound envelope. Only the fields relevant to
// the message type are populated.
type ClientMessage struct {
	Type      string             `json:"type"`
	Name      string             `json:"name,omitempty"`
	Settings  *app.SettingsPatch `json:"settings,omitempty"`
	ChitIndex int                `json:"chitIndex"`
	Token     string             `json:"token,omitempty"`
}

// DecodeClientMessage parses an inbound payload. A payload that cannot be
// parsed is a validation failure at the boundary, never a room fault.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, app.ErrBadPayload
	}
	return msg, nil
}

type RoomStateMessage struct {
	Type  string    `json:"type"`
	State RoomState `json:"state"`
}

type YourHandMessage struct {
	Type string   `json:"type"`
	Hand []string `json:"hand"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type GameStartedMessage struct {
	Type string `json:"type"`
}

type WinnerMessage struct {
	Type       string `json:"type"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Entity     string `json:"entity"`
}

type RejoinTokenMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

func EncodeRoomState(state RoomState) ([]byte, error) {
	return json.Marshal(RoomStateMessage{Type: TypeRoomState, State: state})
}

func EncodeYourHand(hand []string) ([]byte, error) {
	if hand == nil {
		hand = []string{}
	}
	return json.Marshal(YourHandMessage{Type: TypeYourHand, Hand: hand})
}

func EncodeError(message string) ([]byte, error) {
	return json.Marshal(ErrorMessage{Type: TypeError, Message: message})
}

func EncodeGameStarted() ([]byte, error) {
	return json.Marshal(GameStartedMessage{Type: TypeGameStarted})
}

func EncodeWinner(playerID, playerName, entity string) ([]byte, error) {
	return json.Marshal(WinnerMessage{
		Type:       TypeWinner,
		PlayerID:   playerID,
		PlayerName: playerName,
		Entity:     entity,
	})
}

func EncodeRejoinToken(token string) ([]byte, error) {
	return json.Marshal(RejoinTokenMessage{Type: TypeRejoinToken, Token: token})
}
