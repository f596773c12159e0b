// internal/handlers/server.go
package handlers

import (
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pauloqueiros/codinomes/internal/game"
)

// Server owns the live websocket connections and implements
// game.Gateway over them. Broadcast targets are derived from the
// room's roster at send time, so joining a room is the subscription.
type Server struct {
	Manager *game.Manager

	log            *logrus.Logger
	originPatterns []string
	publicURL      string

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

// client is one live websocket connection. Events are queued on out
// and drained by the connection's write pump.
type client struct {
	id       uuid.UUID
	username string
	out      chan game.Event
	cancel   func()
}

// NewServer builds the connection registry, the room registry and the
// state machine, wiring the server in as the broadcast gateway.
func NewServer(log *logrus.Logger) *Server {
	s := &Server{
		log:            log,
		originPatterns: []string{"*"},
		publicURL:      "http://localhost:8080",
		clients:        make(map[uuid.UUID]*client),
	}
	if origin := os.Getenv("WS_ORIGIN"); origin != "" {
		s.originPatterns = []string{origin}
	}
	if base := os.Getenv("PUBLIC_URL"); base != "" {
		s.publicURL = base
	}
	registry := game.NewRegistry(log)
	s.Manager = game.NewManager(registry, s, log)
	return s
}

// ToConn queues an event for a single connection. The enqueue is
// non-blocking: a full or gone queue drops the event and logs, the
// same best-effort delivery the rest of the fan-out gets.
func (s *Server) ToConn(connID uuid.UUID, ev game.Event) {
	s.mu.Lock()
	cl, ok := s.clients[connID]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case cl.out <- ev:
	default:
		s.log.WithFields(logrus.Fields{
			"conn":  connID,
			"event": ev.Type,
		}).Warn("Outbound queue full, dropping event")
	}
}

// ToRoom fans an event out to every connection in the room's roster.
func (s *Server) ToRoom(roomID string, ev game.Event) {
	for _, id := range s.roomConnIDs(roomID) {
		s.ToConn(id, ev)
	}
}

// ToRoomExcept fans out to the roster minus one connection.
func (s *Server) ToRoomExcept(roomID string, except uuid.UUID, ev game.Event) {
	for _, id := range s.roomConnIDs(roomID) {
		if id != except {
			s.ToConn(id, ev)
		}
	}
}

func (s *Server) roomConnIDs(roomID string) []uuid.UUID {
	room, ok := s.Manager.Registry().Get(roomID)
	if !ok {
		return nil
	}
	room.Mu.Lock()
	ids := make([]uuid.UUID, 0, len(room.Players))
	for _, p := range room.Players {
		ids = append(ids, p.ID)
	}
	room.Mu.Unlock()
	return ids
}

func (s *Server) addClient(cl *client) {
	s.mu.Lock()
	s.clients[cl.id] = cl
	s.mu.Unlock()
}

func (s *Server) removeClient(connID uuid.UUID) {
	s.mu.Lock()
	delete(s.clients, connID)
	s.mu.Unlock()
}

func (s *Server) setUsername(connID uuid.UUID, username string) {
	s.mu.Lock()
	if cl, ok := s.clients[connID]; ok {
		cl.username = username
	}
	s.mu.Unlock()
}

func (s *Server) usernameFor(connID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cl, ok := s.clients[connID]; ok {
		return cl.username
	}
	return fallbackUsername(connID)
}

// PingHandler answers the health check route.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
