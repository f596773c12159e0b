// internal/game/events.go
package game

import (
	"github.com/google/uuid"
	"github.com/pauloqueiros/codinomes/internal/models"
)

// EventType names an outbound message. The names are the protocol the
// web client listens on, so they stay kebab-case.
type EventType string

const (
	EventRoomCreated   EventType = "room-created"
	EventRoomJoined    EventType = "room-joined"
	EventRoomRejoined  EventType = "room-rejoined"
	EventUsernameSet   EventType = "username-set"
	EventError         EventType = "error"
	EventGameState     EventType = "game-state"
	EventPlayerJoined  EventType = "player-joined"
	EventPlayerLeft    EventType = "player-left"
	EventGameStarted   EventType = "game-started"
	EventGameReset     EventType = "game-reset"
	EventReturnToLobby EventType = "return-to-lobby"
	EventGameEnded     EventType = "game-ended"
)

// Event is a single outbound message. One flat struct covers every
// event; unused fields are omitted from the wire form.
type Event struct {
	Type EventType `json:"type"`

	RoomID string    `json:"roomId,omitempty"`
	Room   *Snapshot `json:"room,omitempty"`

	PlayerID *uuid.UUID `json:"playerId,omitempty"`
	Username string     `json:"username,omitempty"`
	Rejoined bool       `json:"rejoined,omitempty"`

	Team models.Team `json:"team,omitempty"`
	Role models.Role `json:"role,omitempty"`

	Winner     models.Team `json:"winner,omitempty"`
	ByAssassin bool        `json:"byAssassin,omitempty"`

	// Error payload. ErrorType carries the machine tag for the few
	// kinds the client branches on (see ActionError.WireType).
	Message   string `json:"message,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
}

// Gateway delivers events to connections. The handlers package
// implements it over websockets; tests substitute a capture fake.
// Implementations must not block: the manager calls them after
// releasing room locks, and delivery is best-effort fan-out.
type Gateway interface {
	// ToRoom sends to every connection in the room's roster.
	ToRoom(roomID string, ev Event)
	// ToRoomExcept sends to every roster connection but one.
	ToRoomExcept(roomID string, except uuid.UUID, ev Event)
	// ToConn sends to a single connection.
	ToConn(connID uuid.UUID, ev Event)
}

// ErrorEvent builds the error payload delivered to an offending
// connection.
func ErrorEvent(err *ActionError) Event {
	return Event{Type: EventError, Message: err.Message, ErrorType: err.WireType()}
}
