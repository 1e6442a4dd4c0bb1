// Package ws hosts rooms over plain websockets for deployments without a
// Nakama runtime. Each room runs as a single goroutine consuming an inbox
// channel, which is the serialization boundary that keeps turn enforcement
// and win-claim races correct without locks.
package ws

import (
	"sync/atomic"

	"github.com/SwarupVishwas18/char-chitti/internal/app"
	"github.com/SwarupVishwas18/char-chitti/internal/domain"
	"github.com/SwarupVishwas18/char-chitti/internal/ports"
	"github.com/SwarupVishwas18/char-chitti/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type roomEventKind int

const (
	eventConnOpened roomEventKind = iota
	eventConnClosed
	eventInbound
)

// roomEvent is one item on a room's serialized inbox.
type roomEvent struct {
	kind   roomEventKind
	client *client
	connID string
	data   []byte
}

// RoomSession is the authoritative owner of one room's state. All state
// access happens inside run; connections only post to the inbox.
type RoomSession struct {
	id    string
	hub   *Hub
	app   *app.Service
	room  *domain.Room
	inbox chan roomEvent
	log   zerolog.Logger

	clients map[string]*client // conn id -> client

	// pending counts connections handed out by the hub that have not yet
	// posted their open event; teardown waits for it to drain.
	pending atomic.Int32
}

// Attach binds a fresh connection to the room and starts its pumps.
func (s *RoomSession) Attach(connID string, conn *websocket.Conn) {
	c := newClient(connID, conn, s)
	s.inbox <- roomEvent{kind: eventConnOpened, client: c}
	s.pending.Add(-1)
	go c.writePump()
	go c.readPump()
}

func newRoomSession(id string, hub *Hub, svc *app.Service, room *domain.Room, log zerolog.Logger) *RoomSession {
	return &RoomSession{
		id:      id,
		hub:     hub,
		app:     svc,
		room:    room,
		inbox:   make(chan roomEvent, 256),
		log:     log.With().Str("room", id).Logger(),
		clients: make(map[string]*client),
	}
}

// run consumes the inbox until the room is empty and back in the lobby.
// A room with retained mid-game players stays alive for rejoins.
func (s *RoomSession) run() {
	for ev := range s.inbox {
		switch ev.kind {
		case eventConnOpened:
			s.handleOpen(ev.client)
		case eventConnClosed:
			s.handleClosed(ev.connID)
		case eventInbound:
			s.handleInbound(ev.connID, ev.data)
		}

		if len(s.clients) == 0 && s.room.Phase == domain.PhaseLobby {
			if s.hub.removeIfIdle(s) {
				s.log.Info().Msg("room torn down")
				return
			}
		}
	}
}

// SendTo delivers a payload to the connection currently bound to a player.
// Disconnected players are skipped; their state is redelivered on rejoin.
func (s *RoomSession) SendTo(playerID string, msgType string, payload []byte) error {
	for _, c := range s.clients {
		if c.playerID == playerID {
			c.enqueue(payload)
			return nil
		}
	}
	return nil
}

// Broadcast delivers a payload to every connection in the room.
func (s *RoomSession) Broadcast(msgType string, payload []byte) error {
	for _, c := range s.clients {
		c.enqueue(payload)
	}
	return nil
}

func (s *RoomSession) handleOpen(c *client) {
	s.clients[c.connID] = c

	// Every new connection gets the current snapshot.
	payload, err := protocol.EncodeRoomState(protocol.Snapshot(s.id, s.room))
	if err != nil {
		s.log.Error().Err(err).Msg("encode snapshot")
		return
	}
	c.enqueue(payload)
}

func (s *RoomSession) handleClosed(connID string) {
	c, ok := s.clients[connID]
	if !ok {
		return
	}
	delete(s.clients, connID)
	c.closeSend()

	events := s.app.Disconnect(s.room, c.playerID)
	if err := ports.DispatchEvents(s, s.id, s.room, events); err != nil {
		s.log.Error().Err(err).Msg("dispatch disconnect events")
	}
	s.log.Debug().Str("player", c.playerID).Msg("connection closed")
}

func (s *RoomSession) handleInbound(connID string, data []byte) {
	c, ok := s.clients[connID]
	if !ok {
		return
	}

	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		s.sendError(c.playerID, err)
		return
	}

	var events []app.Event
	switch msg.Type {
	case protocol.TypeJoin:
		events, err = s.app.Join(s.room, c.playerID, msg.Name)
	case protocol.TypeRejoin:
		events, err = s.handleRejoin(c, msg.Token)
	case protocol.TypeUpdateSettings:
		if msg.Settings == nil {
			err = app.ErrBadPayload
			break
		}
		events, err = s.app.UpdateSettings(s.room, c.playerID, *msg.Settings)
	case protocol.TypeStartGame:
		events, err = s.app.StartGame(s.room, c.playerID)
	case protocol.TypePassChit:
		events, err = s.app.PassChit(s.room, c.playerID, msg.ChitIndex)
	case protocol.TypeClaimWin:
		events, err = s.app.ClaimWin(s.room, c.playerID)
	case protocol.TypePlayAgain:
		events, err = s.app.PlayAgain(s.room, c.playerID)
	default:
		err = app.ErrBadPayload
	}

	if err != nil {
		s.sendError(c.playerID, err)
		return
	}
	if err := ports.DispatchEvents(s, s.id, s.room, events); err != nil {
		s.log.Error().Err(err).Str("type", msg.Type).Msg("dispatch events")
	}
}

// handleRejoin re-binds a fresh connection to a retained player record when
// it presents a valid token for this room.
func (s *RoomSession) handleRejoin(c *client, token string) ([]app.Event, error) {
	tokens := s.app.Tokens()
	if tokens == nil {
		return nil, app.ErrInvalidToken
	}
	playerID, err := tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if _, ok := s.room.Players[playerID]; !ok {
		return nil, app.ErrUnknownPlayer
	}

	// Drop any stale binding still holding this player id.
	for _, other := range s.clients {
		if other != c && other.playerID == playerID {
			other.playerID = other.connID
		}
	}
	c.playerID = playerID
	s.log.Info().Str("player", playerID).Msg("player rejoined")
	return s.app.Reconnect(s.room, playerID)
}

func (s *RoomSession) sendError(playerID string, actionErr error) {
	if err := ports.SendError(s, playerID, actionErr); err != nil {
		s.log.Error().Err(err).Msg("send error message")
	}
}
