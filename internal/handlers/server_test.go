// internal/handlers/server_test.go
package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloqueiros/codinomes/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(logger)
}

func TestSanitizeUsername(t *testing.T) {
	connID := uuid.New()

	assert.Equal(t, "alice", sanitizeUsername("  alice  ", connID))
	assert.Equal(t, "abcdefghijklmno", sanitizeUsername("abcdefghijklmnopqrstuvwxyz", connID))
	assert.Equal(t, fallbackUsername(connID), sanitizeUsername("   ", connID))
	assert.Equal(t, "Player_"+connID.String()[:5], fallbackUsername(connID))

	// The cap counts runes, not bytes.
	long := "ацдефгхийклмнопр"
	got := sanitizeUsername(long, connID)
	assert.Equal(t, 15, len([]rune(got)))
}

func TestUsernameForFallsBack(t *testing.T) {
	s := newTestServer(t)
	connID := uuid.New()

	assert.Equal(t, fallbackUsername(connID), s.usernameFor(connID))

	s.addClient(&client{id: connID, username: "alice", out: make(chan game.Event, 1)})
	assert.Equal(t, "alice", s.usernameFor(connID))

	s.setUsername(connID, "alicia")
	assert.Equal(t, "alicia", s.usernameFor(connID))

	s.removeClient(connID)
	assert.Equal(t, fallbackUsername(connID), s.usernameFor(connID))
}

func TestToConnDropsWhenQueueFull(t *testing.T) {
	s := newTestServer(t)
	connID := uuid.New()
	s.addClient(&client{id: connID, username: "alice", out: make(chan game.Event, 1)})

	s.ToConn(connID, game.Event{Type: game.EventGameState})
	s.ToConn(connID, game.Event{Type: game.EventGameState})

	s.mu.Lock()
	queued := len(s.clients[connID].out)
	s.mu.Unlock()
	assert.Equal(t, 1, queued, "overflow is dropped, not blocked on")

	// Unknown connections are ignored.
	s.ToConn(uuid.New(), game.Event{Type: game.EventGameState})
}

func TestToRoomFansOutToRoster(t *testing.T) {
	s := newTestServer(t)
	alice := uuid.New()
	bob := uuid.New()
	outsider := uuid.New()
	for _, id := range []uuid.UUID{alice, bob, outsider} {
		s.addClient(&client{id: id, out: make(chan game.Event, 4)})
	}

	require.Nil(t, s.Manager.CreateRoom("party", alice, "alice"))
	require.Nil(t, s.Manager.JoinRoom("party", bob, "bob"))

	drain := func(id uuid.UUID) int {
		s.mu.Lock()
		defer s.mu.Unlock()
		n := len(s.clients[id].out)
		for len(s.clients[id].out) > 0 {
			<-s.clients[id].out
		}
		return n
	}
	drain(alice)
	drain(bob)
	drain(outsider)

	s.ToRoom("party", game.Event{Type: game.EventGameState})
	assert.Equal(t, 1, drain(alice))
	assert.Equal(t, 1, drain(bob))
	assert.Zero(t, drain(outsider))

	s.ToRoomExcept("party", alice, game.Event{Type: game.EventGameState})
	assert.Zero(t, drain(alice))
	assert.Equal(t, 1, drain(bob))

	s.ToRoom("missing", game.Event{Type: game.EventGameState})
}

func TestPingHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	PingHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRoomQRHandler(t *testing.T) {
	s := newTestServer(t)
	require.Nil(t, s.Manager.CreateRoom("party", uuid.New(), "alice"))

	r := mux.NewRouter()
	r.Handle("/rooms/{roomID}/qr.png", RoomQRHandler(s))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/party/qr.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/missing/qr.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
