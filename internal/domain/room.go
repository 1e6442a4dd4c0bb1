package domain

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby indicates the room is waiting for players.
	PhaseLobby Phase = "lobby"
	// PhasePlaying indicates a game is actively in progress.
	PhasePlaying Phase = "playing"
	// PhaseFinished indicates a game has been won and the room awaits a reset.
	PhaseFinished Phase = "finished"
)

// PassMode selects how chit passing is driven.
type PassMode string

const (
	PassModeManual PassMode = "manual"
	PassModeAuto   PassMode = "auto"
)

// MaxNameLength caps display names and entity names.
const MaxNameLength = 20

const (
	MinPlayersPerRoom = 2
	MaxPlayersPerRoom = 8
	MinEntityNames    = 2
	MaxEntityNames    = 10
)

// Player holds the server-side state for a participant in a room.
// The ID equals the connection identity assigned by the hosting substrate.
type Player struct {
	ID          string
	Name        string
	IsOwner     bool
	IsConnected bool
	Hand        []string
	Score       int
}

// Settings are the owner-negotiable room parameters.
type Settings struct {
	RoomName    string
	MaxPlayers  int
	EntityNames []string
	PassMode    PassMode
}

// Room is the authoritative state for a single room instance.
// Mutated only by the app service under serialized dispatch.
type Room struct {
	Settings Settings
	Phase    Phase

	Players map[string]*Player
	roster  []string // player IDs in join order; the stable scan order

	OwnerID string

	Winner       string
	WinnerName   string
	WinnerEntity string

	Round int

	// PlayerOrder is fixed at deal time and is immutable for the whole
	// playing phase, even if a member disconnects.
	PlayerOrder      []string
	CurrentTurnIndex int
	PassRound        int
}

// NewRoom creates a lobby-phase room with the given settings.
func NewRoom(settings Settings) *Room {
	return &Room{
		Settings: settings,
		Phase:    PhaseLobby,
		Players:  make(map[string]*Player),
		Round:    1,
	}
}

// AddPlayer appends a player to the roster.
func (r *Room) AddPlayer(p *Player) {
	if _, exists := r.Players[p.ID]; !exists {
		r.roster = append(r.roster, p.ID)
	}
	r.Players[p.ID] = p
}

// RemovePlayer deletes a player record outright, freeing the slot.
func (r *Room) RemovePlayer(id string) {
	delete(r.Players, id)
	for i, rid := range r.roster {
		if rid == id {
			r.roster = append(r.roster[:i], r.roster[i+1:]...)
			break
		}
	}
}

// PlayersInOrder returns all players in join order.
func (r *Room) PlayersInOrder() []*Player {
	out := make([]*Player, 0, len(r.roster))
	for _, id := range r.roster {
		if p, ok := r.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ConnectedPlayers returns the connected players in join order.
func (r *Room) ConnectedPlayers() []*Player {
	var out []*Player
	for _, p := range r.PlayersInOrder() {
		if p.IsConnected {
			out = append(out, p)
		}
	}
	return out
}

// ConnectedCount returns the number of connected players.
func (r *Room) ConnectedCount() int {
	return len(r.ConnectedPlayers())
}

// CurrentTurnPlayerID returns the id whose turn it is, or "" before any deal.
func (r *Room) CurrentTurnPlayerID() string {
	if len(r.PlayerOrder) == 0 {
		return ""
	}
	return r.PlayerOrder[r.CurrentTurnIndex]
}

// ClearWinner resets the winner fields.
func (r *Room) ClearWinner() {
	r.Winner = ""
	r.WinnerName = ""
	r.WinnerEntity = ""
}
