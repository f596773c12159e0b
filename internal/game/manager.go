// internal/game/manager.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pauloqueiros/codinomes/internal/models"
)

// GameEndedDelay is how long after the terminal game-state snapshot
// the discrete game-ended event follows. The gap lets clients render
// the final board before switching to the end screen.
const GameEndedDelay = 500 * time.Millisecond

// Manager is the room state machine. Every player action is resolved
// against the target room and acting player under the room lock,
// applied, and then broadcast through the Gateway. Rejections are
// returned to the caller, which reports them to the offending
// connection only; a rejected action never mutates room state.
type Manager struct {
	registry *Registry
	gateway  Gateway
	log      *logrus.Logger

	// EndedEventDelay is the snapshot-to-game-ended gap. Tests shrink
	// it; production uses GameEndedDelay.
	EndedEventDelay time.Duration
}

// NewManager wires the state machine to a registry and a gateway.
func NewManager(registry *Registry, gateway Gateway, log *logrus.Logger) *Manager {
	return &Manager{
		registry:        registry,
		gateway:         gateway,
		log:             log,
		EndedEventDelay: GameEndedDelay,
	}
}

// Registry exposes the room registry, used by the transport layer for
// lookups (QR invites, diagnostics).
func (m *Manager) Registry() *Registry { return m.registry }

// CreateRoom registers a fresh waiting room with the acting connection
// as its sole player.
func (m *Manager) CreateRoom(roomID string, connID uuid.UUID, username string) *ActionError {
	room := NewRoom(roomID, &models.Player{ID: connID, Username: username})
	if err := m.registry.Add(room); err != nil {
		return err
	}

	room.Mu.Lock()
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{"room": roomID, "player": username}).Info("Room created")
	m.gateway.ToConn(connID, Event{Type: EventRoomCreated, RoomID: roomID})
	m.gateway.ToConn(connID, Event{Type: EventGameState, Room: snap})
	return nil
}

// JoinRoom appends the connection to an existing room's roster with no
// team or role.
func (m *Manager) JoinRoom(roomID string, connID uuid.UUID, username string) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	room.addPlayer(&models.Player{ID: connID, Username: username})
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{"room": roomID, "player": username}).Info("Player joined room")
	id := connID
	m.gateway.ToConn(connID, Event{Type: EventRoomJoined, RoomID: roomID})
	m.gateway.ToRoomExcept(roomID, connID, Event{Type: EventPlayerJoined, PlayerID: &id, Username: username})
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// RejoinRoom reattaches a reconnecting connection to a room, restoring
// the player's previous team and role by username.
func (m *Manager) RejoinRoom(roomID string, connID uuid.UUID, username string, claimedTeam models.Team, claimedRole models.Role) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomGone
	}

	room.Mu.Lock()
	team, role := room.rejoin(connID, username, claimedTeam, claimedRole)
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"room":   roomID,
		"player": username,
		"team":   team,
		"role":   role,
	}).Info("Player rejoined room")

	id := connID
	m.gateway.ToConn(connID, Event{Type: EventRoomRejoined, RoomID: roomID, Team: team, Role: role})
	m.gateway.ToConn(connID, Event{Type: EventGameState, Room: snap})
	m.gateway.ToRoomExcept(roomID, connID, Event{Type: EventPlayerJoined, PlayerID: &id, Username: username, Rejoined: true})
	return nil
}

// JoinTeam assigns the acting player to a team and role. When the pick
// fills the second spymaster slot outside of play, the game starts on
// its own: team/role assignment is the only readiness signal.
func (m *Manager) JoinTeam(roomID string, connID uuid.UUID, team models.Team, role models.Role) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	if err := room.assignTeamRole(connID, team, role); err != nil {
		room.Mu.Unlock()
		return err
	}
	autoStart := room.State != models.StatePlaying && room.bothSpiesSet()
	if autoStart {
		room.State = models.StatePlaying
	}
	snap := room.snapshot()
	room.Mu.Unlock()

	if autoStart {
		m.log.WithFields(logrus.Fields{"room": roomID}).Info("Both spymasters set, game auto-started")
		m.gateway.ToRoom(roomID, Event{Type: EventGameStarted})
	}
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// StartGame begins play explicitly. Both teams need at least one
// member and a spymaster.
func (m *Manager) StartGame(roomID string, connID uuid.UUID) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	if err := room.readyToStart(); err != nil {
		room.Mu.Unlock()
		return err
	}
	room.State = models.StatePlaying
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{"room": roomID}).Info("Game started")
	m.gateway.ToRoom(roomID, Event{Type: EventGameStarted})
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// GiveClue records a spymaster hint as the current clue and appends it
// to the permanent history.
func (m *Manager) GiveClue(roomID string, connID uuid.UUID, word string, number int) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	player := room.findPlayer(connID)
	if player == nil {
		room.Mu.Unlock()
		return errPlayerNotInRoom
	}
	if player.Role != models.RoleSpymaster {
		room.Mu.Unlock()
		return errNotSpymaster
	}
	if player.Team != room.CurrentTurn {
		room.Mu.Unlock()
		return errNotYourTurn
	}
	clue := models.Clue{Word: word, Number: number, Team: player.Team, Timestamp: time.Now()}
	room.CurrentClue = &clue
	room.ClueHistory = append(room.ClueHistory, clue)
	snap := room.snapshot()
	room.Mu.Unlock()

	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// EndTurn passes the turn voluntarily. Only an operative on the team
// currently guessing may pass. The current clue is left in place; the
// client decides whether a stale clue is shown.
func (m *Manager) EndTurn(roomID string, connID uuid.UUID) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	player := room.findPlayer(connID)
	if player == nil {
		room.Mu.Unlock()
		return errPlayerNotInRoom
	}
	if player.Team != room.CurrentTurn {
		room.Mu.Unlock()
		return errNotYourTurn
	}
	if player.Role != models.RoleOperative {
		room.Mu.Unlock()
		return errNotOperative
	}
	room.CurrentTurn = room.CurrentTurn.Opposite()
	snap := room.snapshot()
	room.Mu.Unlock()

	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// SelectCard reveals a card for the acting connection's team. Invalid
// selections are swallowed without a reply: concurrently clicking
// teammates make them a legitimate race, not a protocol error.
func (m *Manager) SelectCard(connID uuid.UUID, cardIndex int) {
	room := m.registry.FindByConnection(connID)
	if room == nil {
		return
	}

	room.Mu.Lock()
	player := room.findPlayer(connID)
	if player == nil || player.Team != room.CurrentTurn {
		room.Mu.Unlock()
		return
	}
	res, ok := room.revealCard(cardIndex)
	if !ok {
		room.Mu.Unlock()
		return
	}
	roomID := room.ID
	snap := room.snapshot()
	room.Mu.Unlock()

	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})

	if res.Ended {
		m.log.WithFields(logrus.Fields{
			"room":       roomID,
			"winner":     res.Winner,
			"byAssassin": res.ByAssassin,
		}).Info("Game ended")

		ended := Event{
			Type:       EventGameEnded,
			RoomID:     roomID,
			Winner:     res.Winner,
			ByAssassin: res.ByAssassin,
		}
		// The snapshot above must reach clients before the end screen
		// transition, so the discrete event follows after a delay.
		time.AfterFunc(m.EndedEventDelay, func() {
			m.gateway.ToRoom(roomID, ended)
		})
	}
}

// ResetGame rebuilds the board for a rematch, keeping team membership
// but clearing roles and spymaster slots.
func (m *Manager) ResetGame(roomID string, connID uuid.UUID) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	room.reset()
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{"room": roomID}).Info("Game reset")
	m.gateway.ToRoom(roomID, Event{Type: EventGameReset, Room: snap})
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// ReturnToLobby resets the game and dissolves both teams, leaving
// everyone unassigned.
func (m *Manager) ReturnToLobby(roomID string, connID uuid.UUID) *ActionError {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return errRoomNotFound
	}

	room.Mu.Lock()
	room.returnToLobby()
	snap := room.snapshot()
	room.Mu.Unlock()

	m.log.WithFields(logrus.Fields{"room": roomID}).Info("Room returned to lobby")
	m.gateway.ToRoom(roomID, Event{Type: EventReturnToLobby, Room: snap})
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	return nil
}

// Disconnect removes the connection from whichever room holds it,
// deleting the room when the roster empties.
func (m *Manager) Disconnect(connID uuid.UUID) {
	room := m.registry.FindByConnection(connID)
	if room == nil {
		return
	}

	room.Mu.Lock()
	found, empty := room.removePlayer(connID)
	roomID := room.ID
	var snap *Snapshot
	if found && !empty {
		snap = room.snapshot()
	}
	room.Mu.Unlock()

	if !found {
		return
	}
	if empty {
		m.registry.Delete(roomID)
		m.log.WithFields(logrus.Fields{"room": roomID}).Info("Room deleted, last player left")
		return
	}

	id := connID
	m.gateway.ToRoom(roomID, Event{Type: EventPlayerLeft, PlayerID: &id})
	m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
}

// LeaveRoom is an explicit leave-room action; cleanup is identical to
// a transport-level disconnect.
func (m *Manager) LeaveRoom(connID uuid.UUID) {
	m.Disconnect(connID)
}

// SetUsername renames the player in the room holding the connection
// (if any) and pushes the updated roster to everyone there.
func (m *Manager) SetUsername(connID uuid.UUID, username string) {
	room := m.registry.FindByConnection(connID)
	if room == nil {
		return
	}

	room.Mu.Lock()
	changed := room.setUsername(connID, username)
	roomID := room.ID
	snap := room.snapshot()
	room.Mu.Unlock()

	if changed {
		m.gateway.ToRoom(roomID, Event{Type: EventGameState, Room: snap})
	}
}
