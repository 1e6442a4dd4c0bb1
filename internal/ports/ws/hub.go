package ws

import (
	"sync"
	"time"

	"github.com/SwarupVishwas18/char-chitti/internal/app"
	"github.com/SwarupVishwas18/char-chitti/internal/config"
	"github.com/SwarupVishwas18/char-chitti/internal/domain"

	"github.com/rs/zerolog"
)

// Hub is the room registry. Rooms are created on first connection to a room
// code and removed when they fall idle. The registry lock covers only the
// map; room state itself is owned by each session goroutine.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*RoomSession
	secret []byte
	log    zerolog.Logger
}

// NewHub creates a registry. secret signs rejoin tokens; an empty secret
// disables rejoin.
func NewHub(secret []byte, log zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]*RoomSession),
		secret: secret,
		log:    log,
	}
}

// Room returns the session for a room code, creating and starting it on
// first use.
func (h *Hub) Room(roomID string) *RoomSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.rooms[roomID]; ok {
		session.pending.Add(1)
		return session
	}

	var tokens *app.RejoinTokens
	if len(h.secret) > 0 {
		ttl := time.Duration(config.RejoinTokenTTLSeconds()) * time.Second
		tokens = app.NewRejoinTokens(h.secret, roomID, ttl)
	}

	session := newRoomSession(roomID, h, app.NewService(nil, tokens), domain.NewRoom(config.DefaultSettings()), h.log)
	session.pending.Add(1)
	h.rooms[roomID] = session
	go session.run()

	h.log.Info().Str("room", roomID).Msg("room created")
	return session
}

// removeIfIdle deregisters a session unless a connection handed out by the
// hub is still on its way in.
func (h *Hub) removeIfIdle(s *RoomSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.pending.Load() > 0 || len(s.inbox) > 0 {
		return false
	}
	delete(h.rooms, s.id)
	return true
}
