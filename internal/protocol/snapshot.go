package protocol

import "github.com/SwarupVishwas18/char-chitti/internal/domain"

// PlayerView is the public projection of a player; the hand is always empty
// in this projection.
type PlayerView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	IsOwner     bool     `json:"isOwner"`
	IsConnected bool     `json:"isConnected"`
	Hand        []string `json:"hand"`
	Score       int      `json:"score"`
}

type SettingsView struct {
	RoomName    string   `json:"roomName"`
	MaxPlayers  int      `json:"maxPlayers"`
	EntityNames []string `json:"entityNames"`
	PassMode    string   `json:"passMode"`
}

// RoomState is the broadcastable snapshot of room state.
type RoomState struct {
	RoomID              string       `json:"roomId"`
	Settings            SettingsView `json:"settings"`
	Players             []PlayerView `json:"players"`
	Phase               string       `json:"phase"`
	Winner              *string      `json:"winner"`
	WinnerName          *string      `json:"winnerName"`
	WinnerEntity        *string      `json:"winnerEntity"`
	Round               int          `json:"round"`
	OwnerID             string       `json:"ownerId"`
	PlayerOrder         []string     `json:"playerOrder"`
	CurrentTurnPlayerID *string      `json:"currentTurnPlayerId"`
	PassRound           int          `json:"passRound"`
}

// Snapshot builds the redacted public projection of a room.
func Snapshot(roomID string, room *domain.Room) RoomState {
	players := make([]PlayerView, 0, len(room.Players))
	for _, p := range room.PlayersInOrder() {
		players = append(players, PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			IsOwner:     p.IsOwner,
			IsConnected: p.IsConnected,
			Hand:        []string{},
			Score:       p.Score,
		})
	}

	order := room.PlayerOrder
	if order == nil {
		order = []string{}
	}

	return RoomState{
		RoomID: roomID,
		Settings: SettingsView{
			RoomName:    room.Settings.RoomName,
			MaxPlayers:  room.Settings.MaxPlayers,
			EntityNames: append([]string{}, room.Settings.EntityNames...),
			PassMode:    string(room.Settings.PassMode),
		},
		Players:             players,
		Phase:               string(room.Phase),
		Winner:              nullable(room.Winner),
		WinnerName:          nullable(room.WinnerName),
		WinnerEntity:        nullable(room.WinnerEntity),
		Round:               room.Round,
		OwnerID:             room.OwnerID,
		PlayerOrder:         order,
		CurrentTurnPlayerID: nullable(room.CurrentTurnPlayerID()),
		PassRound:           room.PassRound,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
