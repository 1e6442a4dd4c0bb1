package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server exposes the websocket endpoint that routes connections to their
// room sessions.
type Server struct {
	hub      *Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, log zerolog.Logger) *Server {
	return &Server{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the gin engine: one websocket route per room code plus a
// health probe.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/:roomID", s.handleWebsocket)

	return r
}

func (s *Server) handleWebsocket(c *gin.Context) {
	roomID := c.Param("roomID")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id required"})
		return
	}

	session := s.hub.Room(roomID)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		session.pending.Add(-1)
		return
	}

	session.Attach(uuid.NewString(), conn)
}
