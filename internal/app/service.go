package app

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/SwarupVishwas18/char-chitti/internal/domain"
)

// Service contains the room use-cases operating on domain state. Every
// mutating operation is all-or-nothing: a returned error means the room was
// left untouched.
type Service struct {
	rng    *rand.Rand
	tokens *RejoinTokens
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. tokens may be nil, in which case no rejoin tokens are issued.
func NewService(rng *rand.Rand, tokens *RejoinTokens) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, tokens: tokens}
}

// Tokens returns the rejoin token service, or nil when rejoin is disabled.
func (s *Service) Tokens() *RejoinTokens {
	return s.tokens
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	RoomName    *string  `json:"roomName,omitempty"`
	MaxPlayers  *int     `json:"maxPlayers,omitempty"`
	EntityNames []string `json:"entityNames,omitempty"`
	PassMode    *string  `json:"passMode,omitempty"`
}

// Join adds a player to the roster. The connection identity becomes the
// player id. The first player added to an empty roster becomes owner.
func (s *Service) Join(room *domain.Room, connID, name string) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrGameInProgress
	}
	if room.ConnectedCount() >= room.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	isFirst := len(room.Players) == 0
	if isFirst {
		room.OwnerID = connID
	}

	room.AddPlayer(&domain.Player{
		ID:          connID,
		Name:        cleanName(name),
		IsOwner:     isFirst,
		IsConnected: true,
		Hand:        []string{},
	})

	var events []Event
	if s.tokens != nil {
		token, err := s.tokens.Issue(connID)
		if err == nil {
			events = append(events, Event{
				Kind:       EventRejoinToken,
				Payload:    RejoinTokenPayload{PlayerID: connID, Token: token},
				Recipients: []string{connID},
			})
		}
	}
	return append(events, Event{Kind: EventRoomState}), nil
}

// Disconnect marks a player disconnected, transferring ownership to the
// first remaining connected player in join order. In the lobby the record is
// deleted outright; mid-game it is retained for score and turn continuity.
func (s *Service) Disconnect(room *domain.Room, id string) []Event {
	p, ok := room.Players[id]
	if !ok {
		return nil
	}
	p.IsConnected = false

	if id == room.OwnerID {
		for _, other := range room.PlayersInOrder() {
			if other.ID != id && other.IsConnected {
				room.OwnerID = other.ID
				other.IsOwner = true
				p.IsOwner = false
				break
			}
		}
		// If nobody is left connected the owner id stays stale until the
		// next join claims it.
	}

	if room.Phase == domain.PhaseLobby {
		room.RemovePlayer(id)
	}

	return []Event{{Kind: EventRoomState}}
}

// Reconnect re-binds a connection to a retained player record. Callers are
// expected to have validated the rejoin token first.
func (s *Service) Reconnect(room *domain.Room, id string) ([]Event, error) {
	p, ok := room.Players[id]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	p.IsConnected = true

	events := []Event{{Kind: EventRoomState}}
	if room.Phase != domain.PhaseLobby {
		events = append(events, Event{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: p.ID, Hand: copyHand(p.Hand)},
			Recipients: []string{p.ID},
		})
	}
	return events, nil
}

// UpdateSettings validates and merges a partial settings update. Validation
// happens before any field is merged, so a rejected call mutates nothing.
func (s *Service) UpdateSettings(room *domain.Room, actorID string, patch SettingsPatch) ([]Event, error) {
	if actorID != room.OwnerID {
		return nil, ErrSettingsNotOwner
	}
	if room.Phase != domain.PhaseLobby {
		return nil, ErrSettingsLocked
	}

	var cleanedEntities []string
	if patch.EntityNames != nil {
		cleanedEntities = cleanEntityNames(patch.EntityNames)
		if len(cleanedEntities) < domain.MinEntityNames {
			return nil, ErrTooFewEntities
		}
	}

	var passMode domain.PassMode
	if patch.PassMode != nil {
		switch domain.PassMode(*patch.PassMode) {
		case domain.PassModeManual, domain.PassModeAuto:
			passMode = domain.PassMode(*patch.PassMode)
		default:
			return nil, ErrInvalidPassMode
		}
	}

	if patch.RoomName != nil {
		if name := strings.TrimSpace(*patch.RoomName); name != "" {
			room.Settings.RoomName = name
		}
	}
	if patch.MaxPlayers != nil {
		room.Settings.MaxPlayers = clamp(*patch.MaxPlayers, domain.MinPlayersPerRoom, domain.MaxPlayersPerRoom)
	}
	if cleanedEntities != nil {
		room.Settings.EntityNames = cleanedEntities
	}
	if passMode != "" {
		room.Settings.PassMode = passMode
	}

	return []Event{{Kind: EventRoomState}}, nil
}

// StartGame deals a fresh round: it builds a pool of four chits per
// connected player slot, shuffles it, deals contiguous runs of four, and
// locks the clockwise player order for the whole playing phase.
func (s *Service) StartGame(room *domain.Room, actorID string) ([]Event, error) {
	if actorID != room.OwnerID {
		return nil, ErrStartNotOwner
	}
	connected := room.ConnectedPlayers()
	if len(connected) < MinPlayersToStart {
		return nil, ErrTooFewPlayers
	}

	// Synthesize placeholder entities until there is one per player. The
	// mutation is permanent: the names stay in settings for later rounds.
	for len(room.Settings.EntityNames) < len(connected) {
		room.Settings.EntityNames = append(room.Settings.EntityNames,
			fmt.Sprintf("Entity%d", len(room.Settings.EntityNames)+1))
	}

	pool := domain.BuildChitPool(room.Settings.EntityNames, len(connected))
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	order := make([]string, len(connected))
	for i, p := range connected {
		p.Hand = copyHand(pool[i*domain.ChitsPerEntity : (i+1)*domain.ChitsPerEntity])
		order[i] = p.ID
	}

	room.PlayerOrder = order
	room.CurrentTurnIndex = 0
	room.PassRound = 1
	room.ClearWinner()
	room.Phase = domain.PhasePlaying

	events := make([]Event, 0, len(connected)+2)
	events = append(events, Event{Kind: EventGameStarted})
	events = append(events, Event{Kind: EventRoomState})
	for _, p := range connected {
		events = append(events, Event{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: p.ID, Hand: copyHand(p.Hand)},
			Recipients: []string{p.ID},
		})
	}
	return events, nil
}

// PassChit moves the chit at chitIndex from the current turn player's hand
// to the next slot clockwise, then advances the turn pointer. Requests that
// are not addressable at all (wrong phase, unknown sender, index out of the
// hand's bounds) are ignored without a reply.
func (s *Service) PassChit(room *domain.Room, senderID string, chitIndex int) ([]Event, error) {
	if room.Phase != domain.PhasePlaying {
		return nil, nil
	}
	sender, ok := room.Players[senderID]
	if !ok {
		return nil, nil
	}
	if chitIndex < 0 || chitIndex >= len(sender.Hand) {
		return nil, nil
	}
	if senderID != room.CurrentTurnPlayerID() {
		return nil, ErrNotYourTurn
	}

	// The receiver slot always exists: mid-game disconnects retain the
	// record, so a disconnected neighbor keeps accumulating chits.
	nextIndex := (room.CurrentTurnIndex + 1) % len(room.PlayerOrder)
	receiver, ok := room.Players[room.PlayerOrder[nextIndex]]
	if !ok {
		return nil, nil
	}

	chit, rest := domain.RemoveChitAt(sender.Hand, chitIndex)
	sender.Hand = rest
	receiver.Hand = append(receiver.Hand, chit)

	room.CurrentTurnIndex = nextIndex
	if room.CurrentTurnIndex == 0 {
		room.PassRound++
	}

	return []Event{
		{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: sender.ID, Hand: copyHand(sender.Hand)},
			Recipients: []string{sender.ID},
		},
		{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: receiver.ID, Hand: copyHand(receiver.Hand)},
			Recipients: []string{receiver.ID},
		},
		{Kind: EventRoomState},
	}, nil
}

// ClaimWin validates a four-of-a-kind claim. Dispatch is serialized per
// room, so the first valid claim processed wins unambiguously.
func (s *Service) ClaimWin(room *domain.Room, playerID string) ([]Event, error) {
	if room.Phase != domain.PhasePlaying {
		return nil, nil
	}
	p, ok := room.Players[playerID]
	if !ok {
		return nil, nil
	}

	entity, won := domain.WinningEntity(p.Hand)
	if !won {
		return nil, ErrClaimRejected
	}

	room.Phase = domain.PhaseFinished
	room.Winner = p.ID
	room.WinnerName = p.Name
	room.WinnerEntity = entity
	p.Score++

	return []Event{
		{Kind: EventWinner, Payload: WinnerPayload{PlayerID: p.ID, PlayerName: p.Name, Entity: entity}},
		{Kind: EventRoomState},
	}, nil
}

// PlayAgain returns a finished room to the lobby, keeping scores for a
// running tournament. The stale player order is recomputed on the next deal.
func (s *Service) PlayAgain(room *domain.Room, actorID string) ([]Event, error) {
	if actorID != room.OwnerID {
		return nil, ErrPlayAgainNotOwner
	}
	if room.Phase != domain.PhaseFinished {
		return nil, nil
	}

	room.Phase = domain.PhaseLobby
	room.ClearWinner()
	room.Round++
	for _, p := range room.Players {
		p.Hand = []string{}
	}

	return []Event{{Kind: EventRoomState}}, nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > domain.MaxNameLength {
		name = string(runes[:domain.MaxNameLength])
	}
	if name == "" {
		return DefaultPlayerName
	}
	return name
}

// cleanEntityNames trims, truncates, drops empties and duplicates, and caps
// the list at the configured maximum, preserving first-seen order.
func cleanEntityNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if runes := []rune(name); len(runes) > domain.MaxNameLength {
			name = string(runes[:domain.MaxNameLength])
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, name)
		if len(cleaned) == domain.MaxEntityNames {
			break
		}
	}
	return cleaned
}

func copyHand(hand []string) []string {
	return append([]string{}, hand...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
