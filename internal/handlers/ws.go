// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pauloqueiros/codinomes/internal/game"
	"github.com/pauloqueiros/codinomes/internal/models"
)

const wsSubprotocol = "codinomes"

// maxUsernameLen caps display names at the transport boundary.
const maxUsernameLen = 15

// ActionMessage is the envelope for every inbound client action.
// Unused fields are simply absent for a given action type.
type ActionMessage struct {
	Type     string      `json:"type"`
	Room     string      `json:"room,omitempty"`
	Username string      `json:"username,omitempty"`
	Team     models.Team `json:"team,omitempty"`
	Role     models.Role `json:"role,omitempty"`
	Clue     string      `json:"clue,omitempty"`
	Number   int         `json:"number,omitempty"`

	// CardIndex is a pointer so select-card for board position 0 is
	// distinguishable from a missing index.
	CardIndex *int `json:"cardIndex,omitempty"`
}

// WSHandler upgrades the connection, mints its ephemeral id and runs
// the read loop until the client goes away. Each connection gets a
// write pump draining its outbound queue; room state cleanup happens
// when the read loop exits, whatever the reason.
func WSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{wsSubprotocol},
			OriginPatterns: s.originPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != wsSubprotocol {
			c.Close(websocket.StatusPolicyViolation, "client must speak the codinomes subprotocol")
			return
		}

		connID := uuid.New()
		ctx, cancel := context.WithCancel(r.Context())
		cl := &client{
			id:       connID,
			username: fallbackUsername(connID),
			out:      make(chan game.Event, 16),
			cancel:   cancel,
		}
		s.addClient(cl)
		logger.WithFields(logrus.Fields{
			"conn":   connID,
			"remote": r.RemoteAddr,
		}).Info("Client connected")

		go writePump(ctx, c, cl, logger)
		readLoop(ctx, c, s, cl, logger)

		s.Manager.Disconnect(connID)
		s.removeClient(connID)
		cancel()
		logger.WithFields(logrus.Fields{"conn": connID}).Info("Client disconnected")
	}
}

// readLoop decodes action envelopes and dispatches them until the
// connection closes or the context is cancelled.
func readLoop(ctx context.Context, c *websocket.Conn, s *Server, cl *client, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Debugf("websocket closed normally for conn %s", cl.id)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("read error for conn %s: %v", cl.id, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg ActionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from conn %s: %v", cl.id, err)
			s.ToConn(cl.id, game.Event{Type: game.EventError, Message: "Invalid JSON format"})
			continue
		}

		dispatch(s, cl, msg, logger)
	}
}

// dispatch routes one client action to the state machine. Rejections
// go back to the acting connection only.
func dispatch(s *Server, cl *client, msg ActionMessage, logger *logrus.Logger) {
	var err *game.ActionError

	switch msg.Type {
	case "set-username":
		name := sanitizeUsername(msg.Username, cl.id)
		s.setUsername(cl.id, name)
		s.Manager.SetUsername(cl.id, name)
		s.ToConn(cl.id, game.Event{Type: game.EventUsernameSet, Username: name})
	case "create-room":
		err = s.Manager.CreateRoom(msg.Room, cl.id, s.usernameFor(cl.id))
	case "join-room":
		err = s.Manager.JoinRoom(msg.Room, cl.id, s.usernameFor(cl.id))
	case "rejoin-room":
		err = s.Manager.RejoinRoom(msg.Room, cl.id, s.usernameFor(cl.id), msg.Team, msg.Role)
	case "join-team":
		err = s.Manager.JoinTeam(msg.Room, cl.id, msg.Team, msg.Role)
	case "start-game":
		err = s.Manager.StartGame(msg.Room, cl.id)
	case "give-clue":
		err = s.Manager.GiveClue(msg.Room, cl.id, msg.Clue, msg.Number)
	case "end-turn":
		err = s.Manager.EndTurn(msg.Room, cl.id)
	case "play-again", "reset-game":
		err = s.Manager.ResetGame(msg.Room, cl.id)
	case "return-to-lobby":
		err = s.Manager.ReturnToLobby(msg.Room, cl.id)
	case "select-card":
		if msg.CardIndex != nil {
			s.Manager.SelectCard(cl.id, *msg.CardIndex)
		}
	case "leave-room":
		s.Manager.LeaveRoom(cl.id)
	default:
		logger.Warnf("unknown action %q from conn %s", msg.Type, cl.id)
		s.ToConn(cl.id, game.Event{
			Type:    game.EventError,
			Message: fmt.Sprintf("Unknown action type: %s", msg.Type),
		})
	}

	if err != nil {
		s.ToConn(cl.id, game.ErrorEvent(err))
	}
}

// writePump drains the connection's outbound queue, pinging
// periodically to detect dead peers.
func writePump(ctx context.Context, c *websocket.Conn, cl *client, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cl.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal event %s for conn %s: %v", ev.Type, cl.id, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write failed for conn %s: %v", cl.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for conn %s, assuming disconnect: %v", cl.id, err)
				return
			}
		}
	}
}

// sanitizeUsername trims and caps a client-supplied display name,
// falling back to a Player_<id> handle when nothing usable remains.
func sanitizeUsername(raw string, connID uuid.UUID) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return fallbackUsername(connID)
	}
	runes := []rune(name)
	if len(runes) > maxUsernameLen {
		name = string(runes[:maxUsernameLen])
	}
	return name
}

func fallbackUsername(connID uuid.UUID) string {
	return "Player_" + connID.String()[:5]
}
