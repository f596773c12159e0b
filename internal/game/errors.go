// internal/game/errors.go
package game

// ErrorKind is a machine-readable tag for action rejections. Only a
// few kinds are surfaced on the wire as error{type}; the rest reach
// the client as a plain error{message}.
type ErrorKind string

const (
	KindRoomNotFound     ErrorKind = "room-not-found"
	KindRoomExists       ErrorKind = "room-exists"
	KindRejoinError      ErrorKind = "rejoin-error"
	KindPlayerNotInRoom  ErrorKind = "player-not-in-room"
	KindSpymasterLocked  ErrorKind = "spymaster-locked"
	KindGameStarted      ErrorKind = "game-already-started"
	KindSpySlotTaken     ErrorKind = "spymaster-slot-taken"
	KindEmptyTeam        ErrorKind = "empty-team"
	KindMissingSpymaster ErrorKind = "missing-spymaster"
	KindNotSpymaster     ErrorKind = "not-spymaster"
	KindNotOperative     ErrorKind = "not-operative"
	KindNotYourTurn      ErrorKind = "not-your-turn"
)

// ActionError is a rejection of a player action. It is reported only
// to the offending connection; room state is never changed by a
// rejected action.
type ActionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ActionError) Error() string { return e.Message }

// WireType returns the error type tag shipped to the client, or ""
// when the client only needs the message. The original protocol tags
// room-not-found (so the client can offer to create a fresh room) and
// rejoin failures (so the client can drop its stale session).
func (e *ActionError) WireType() string {
	switch e.Kind {
	case KindRoomNotFound, KindRejoinError:
		return string(e.Kind)
	default:
		return ""
	}
}

var (
	errRoomNotFound     = &ActionError{KindRoomNotFound, "Room does not exist"}
	errRoomExists       = &ActionError{KindRoomExists, "Room already exists"}
	errRoomGone         = &ActionError{KindRejoinError, "Room no longer exists"}
	errPlayerNotInRoom  = &ActionError{KindPlayerNotInRoom, "Player not found in room"}
	errSpymasterLocked  = &ActionError{KindSpymasterLocked, "Spymasters cannot change teams"}
	errGameStarted      = &ActionError{KindGameStarted, "Cannot join as spymaster after game has started"}
	errRedSpyTaken      = &ActionError{KindSpySlotTaken, "Red team already has a spymaster"}
	errBlueSpyTaken     = &ActionError{KindSpySlotTaken, "Blue team already has a spymaster"}
	errEmptyTeam        = &ActionError{KindEmptyTeam, "Both teams need at least one player"}
	errMissingSpymaster = &ActionError{KindMissingSpymaster, "Both teams need a spymaster"}
	errNotSpymaster     = &ActionError{KindNotSpymaster, "Only spymasters can give clues"}
	errNotOperative     = &ActionError{KindNotOperative, "Only operatives can end turn"}
	errNotYourTurn      = &ActionError{KindNotYourTurn, "Not your team's turn"}
)
