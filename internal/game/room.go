// internal/game/room.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pauloqueiros/codinomes/internal/models"
)

// CardsLeft counts the unrevealed cards per team. It is derived state,
// recomputed on every reveal and reset, and shipped in snapshots for
// the client scoreboard.
type CardsLeft struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Room is one isolated game instance: the roster of connected players,
// the 25-card board, team assignments and the clue log. All methods
// below assume the caller holds Mu; the Manager is the only caller and
// locks around every operation.
type Room struct {
	ID          string
	State       models.GameState
	Cards       []models.Card
	CurrentTurn models.Team
	Players     []*models.Player
	RedTeam     []models.TeamMember
	BlueTeam    []models.TeamMember
	RedSpy      *uuid.UUID
	BlueSpy     *uuid.UUID
	CurrentClue *models.Clue
	ClueHistory []models.Clue
	Winner      models.Team
	CardsLeft   CardsLeft

	CreatedAt time.Time

	Mu sync.Mutex
}

// Snapshot is the wire form of a Room, broadcast wholesale after every
// mutating operation. Clients re-render from it rather than patching.
type Snapshot struct {
	ID          string              `json:"id"`
	State       models.GameState    `json:"gameState"`
	Cards       []models.Card       `json:"cards"`
	CurrentTurn models.Team         `json:"currentTurn"`
	Players     []models.Player     `json:"players"`
	RedTeam     []models.TeamMember `json:"redTeam"`
	BlueTeam    []models.TeamMember `json:"blueTeam"`
	RedSpy      *uuid.UUID          `json:"redSpy"`
	BlueSpy     *uuid.UUID          `json:"blueSpy"`
	CurrentClue *models.Clue        `json:"currentClue"`
	ClueHistory []models.Clue       `json:"clueHistory"`
	Winner      models.Team         `json:"winner,omitempty"`
	CardsLeft   CardsLeft           `json:"cardsLeft"`
}

// NewRoom builds a waiting room with a fresh deck. The creator joins
// as the sole player with no team or role.
func NewRoom(id string, creator *models.Player) *Room {
	deck := GenerateDeck()
	r := &Room{
		ID:          id,
		State:       models.StateWaiting,
		Cards:       deck,
		CurrentTurn: startingTeam(deck),
		Players:     []*models.Player{creator},
		RedTeam:     []models.TeamMember{},
		BlueTeam:    []models.TeamMember{},
		ClueHistory: []models.Clue{},
		CreatedAt:   time.Now(),
	}
	r.refreshCardsLeft()
	return r
}

// snapshot returns a detached copy safe to marshal after Mu is
// released.
func (r *Room) snapshot() *Snapshot {
	s := &Snapshot{
		ID:          r.ID,
		State:       r.State,
		Cards:       make([]models.Card, len(r.Cards)),
		CurrentTurn: r.CurrentTurn,
		Players:     make([]models.Player, len(r.Players)),
		RedTeam:     append([]models.TeamMember{}, r.RedTeam...),
		BlueTeam:    append([]models.TeamMember{}, r.BlueTeam...),
		ClueHistory: append([]models.Clue{}, r.ClueHistory...),
		Winner:      r.Winner,
		CardsLeft:   r.CardsLeft,
	}
	copy(s.Cards, r.Cards)
	for i, p := range r.Players {
		s.Players[i] = *p
	}
	if r.RedSpy != nil {
		id := *r.RedSpy
		s.RedSpy = &id
	}
	if r.BlueSpy != nil {
		id := *r.BlueSpy
		s.BlueSpy = &id
	}
	if r.CurrentClue != nil {
		clue := *r.CurrentClue
		s.CurrentClue = &clue
	}
	return s
}

// findPlayer returns the roster entry for a connection, or nil.
func (r *Room) findPlayer(connID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

// findPlayerByUsername returns the first roster entry with the given
// display name, or nil. Duplicate names collide; first match wins.
func (r *Room) findPlayerByUsername(username string) *models.Player {
	for _, p := range r.Players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

func (r *Room) addPlayer(p *models.Player) {
	r.Players = append(r.Players, p)
}

// removeFromTeam drops the connection from its team roster and clears
// the team's spy slot if it pointed at this connection.
func (r *Room) removeFromTeam(connID uuid.UUID, team models.Team) {
	filter := func(members []models.TeamMember) []models.TeamMember {
		out := members[:0]
		for _, m := range members {
			if m.ID != connID {
				out = append(out, m)
			}
		}
		return out
	}
	switch team {
	case models.TeamRed:
		r.RedTeam = filter(r.RedTeam)
		if r.RedSpy != nil && *r.RedSpy == connID {
			r.RedSpy = nil
		}
	case models.TeamBlue:
		r.BlueTeam = filter(r.BlueTeam)
		if r.BlueSpy != nil && *r.BlueSpy == connID {
			r.BlueSpy = nil
		}
	}
}

// assignTeamRole validates and applies a team/role pick. Spymasters
// are frozen: once the role is taken it cannot be changed or re-picked
// until a reset clears roles. Mid-game only operative picks are
// allowed, and each team has a single spymaster slot.
func (r *Room) assignTeamRole(connID uuid.UUID, team models.Team, role models.Role) *ActionError {
	player := r.findPlayer(connID)
	if player == nil {
		return errPlayerNotInRoom
	}
	if player.Role == models.RoleSpymaster {
		return errSpymasterLocked
	}
	if r.State == models.StatePlaying && role == models.RoleSpymaster {
		return errGameStarted
	}
	if role == models.RoleSpymaster {
		if team == models.TeamRed && r.RedSpy != nil {
			return errRedSpyTaken
		}
		if team == models.TeamBlue && r.BlueSpy != nil {
			return errBlueSpyTaken
		}
	}

	r.removeFromTeam(connID, player.Team)
	player.Team = team
	player.Role = role

	member := models.TeamMember{ID: connID, Username: player.Username, Role: role}
	switch team {
	case models.TeamRed:
		r.RedTeam = append(r.RedTeam, member)
		if role == models.RoleSpymaster {
			id := connID
			r.RedSpy = &id
		}
	case models.TeamBlue:
		r.BlueTeam = append(r.BlueTeam, member)
		if role == models.RoleSpymaster {
			id := connID
			r.BlueSpy = &id
		}
	}
	return nil
}

// readyToStart reports whether the game can begin: both rosters
// non-empty and both spy slots filled.
func (r *Room) readyToStart() *ActionError {
	if len(r.RedTeam) == 0 || len(r.BlueTeam) == 0 {
		return errEmptyTeam
	}
	if r.RedSpy == nil || r.BlueSpy == nil {
		return errMissingSpymaster
	}
	return nil
}

// bothSpiesSet reports whether the auto-start condition holds.
func (r *Room) bothSpiesSet() bool {
	return r.RedSpy != nil && r.BlueSpy != nil
}

// endResult is the outcome of the end-of-game evaluation after a
// card reveal.
type endResult struct {
	Ended      bool
	Winner     models.Team
	ByAssassin bool
}

// revealCard flips a card and evaluates the end of the game. Invalid
// selections (not playing, bad index, already revealed) return ok
// false and change nothing; the caller swallows them silently. When
// the game does not end and the revealed card does not belong to the
// current team, the turn flips; a correct guess keeps the turn. When
// the game ends, currentTurn is frozen at its pre-reveal value.
func (r *Room) revealCard(cardIndex int) (res endResult, ok bool) {
	if r.State != models.StatePlaying {
		return res, false
	}
	if cardIndex < 0 || cardIndex >= len(r.Cards) {
		return res, false
	}
	card := &r.Cards[cardIndex]
	if card.Revealed {
		return res, false
	}

	card.Revealed = true
	r.refreshCardsLeft()

	res = r.checkEnd()
	if !res.Ended && card.Team != models.CardTeam(r.CurrentTurn) {
		r.CurrentTurn = r.CurrentTurn.Opposite()
	}
	return res, true
}

// checkEnd applies the terminal rules in order: a revealed assassin
// loses the game for the guessing team immediately; otherwise a team
// with all cards revealed wins.
func (r *Room) checkEnd() endResult {
	for _, c := range r.Cards {
		if c.Team == models.CardAssassin && c.Revealed {
			r.Winner = r.CurrentTurn.Opposite()
			r.State = models.StateEnded
			return endResult{Ended: true, Winner: r.Winner, ByAssassin: true}
		}
	}
	if r.CardsLeft.Red == 0 {
		r.Winner = models.TeamRed
		r.State = models.StateEnded
		return endResult{Ended: true, Winner: models.TeamRed}
	}
	if r.CardsLeft.Blue == 0 {
		r.Winner = models.TeamBlue
		r.State = models.StateEnded
		return endResult{Ended: true, Winner: models.TeamBlue}
	}
	return endResult{}
}

func (r *Room) refreshCardsLeft() {
	left := CardsLeft{}
	for _, c := range r.Cards {
		if c.Revealed {
			continue
		}
		switch c.Team {
		case models.CardRed:
			left.Red++
		case models.CardBlue:
			left.Blue++
		}
	}
	r.CardsLeft = left
}

// reset regenerates the board for a rematch: fresh deck, cleared
// winner/clues, spy slots and roles cleared, team membership kept.
func (r *Room) reset() {
	r.State = models.StateWaiting
	r.Cards = GenerateDeck()
	r.CurrentTurn = startingTeam(r.Cards)
	r.Winner = ""
	r.CurrentClue = nil
	r.ClueHistory = []models.Clue{}
	r.RedSpy = nil
	r.BlueSpy = nil
	for i := range r.RedTeam {
		r.RedTeam[i].Role = ""
	}
	for i := range r.BlueTeam {
		r.BlueTeam[i].Role = ""
	}
	for _, p := range r.Players {
		p.Role = ""
	}
	r.refreshCardsLeft()
}

// returnToLobby is a reset that also dissolves the teams, taking the
// room back to a fully unassigned lobby.
func (r *Room) returnToLobby() {
	r.reset()
	r.RedTeam = []models.TeamMember{}
	r.BlueTeam = []models.TeamMember{}
	for _, p := range r.Players {
		p.Team = ""
		p.Role = ""
	}
}

// removePlayer drops a connection from the roster and its team, and
// reports whether it was present and whether the room is now empty.
func (r *Room) removePlayer(connID uuid.UUID) (found, empty bool) {
	player := r.findPlayer(connID)
	if player == nil {
		return false, len(r.Players) == 0
	}
	r.removeFromTeam(connID, player.Team)
	out := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != connID {
			out = append(out, p)
		}
	}
	r.Players = out
	return true, len(r.Players) == 0
}

// rejoin reattaches a reconnecting player. The previous record is
// matched by username and its connection id rewritten in place,
// preserving team and role; team roster entries and spy slots follow
// the new id. A name with no previous record is inserted fresh using
// the client-claimed team/role as a best-effort restoration. The
// server keeps no session store, so the claim is trusted; the stakes
// are a party game, not a security boundary.
func (r *Room) rejoin(connID uuid.UUID, username string, team models.Team, role models.Role) (models.Team, models.Role) {
	if existing := r.findPlayerByUsername(username); existing != nil {
		oldID := existing.ID
		existing.ID = connID
		team = existing.Team
		role = existing.Role
		r.retargetTeamEntries(oldID, connID, username)
	} else {
		r.addPlayer(&models.Player{ID: connID, Username: username, Team: team, Role: role})
	}

	switch team {
	case models.TeamRed:
		if !r.hasTeamMember(r.RedTeam, username) {
			r.RedTeam = append(r.RedTeam, models.TeamMember{ID: connID, Username: username, Role: role})
		}
		if role == models.RoleSpymaster {
			id := connID
			r.RedSpy = &id
		}
	case models.TeamBlue:
		if !r.hasTeamMember(r.BlueTeam, username) {
			r.BlueTeam = append(r.BlueTeam, models.TeamMember{ID: connID, Username: username, Role: role})
		}
		if role == models.RoleSpymaster {
			id := connID
			r.BlueSpy = &id
		}
	}
	return team, role
}

func (r *Room) hasTeamMember(members []models.TeamMember, username string) bool {
	for _, m := range members {
		if m.Username == username {
			return true
		}
	}
	return false
}

// retargetTeamEntries points roster entries and spy slots at a
// player's new connection id after a reconnect.
func (r *Room) retargetTeamEntries(oldID, newID uuid.UUID, username string) {
	for i := range r.RedTeam {
		if r.RedTeam[i].Username == username {
			r.RedTeam[i].ID = newID
		}
	}
	for i := range r.BlueTeam {
		if r.BlueTeam[i].Username == username {
			r.BlueTeam[i].ID = newID
		}
	}
	if r.RedSpy != nil && *r.RedSpy == oldID {
		id := newID
		r.RedSpy = &id
	}
	if r.BlueSpy != nil && *r.BlueSpy == oldID {
		id := newID
		r.BlueSpy = &id
	}
}

// setUsername renames a connection's player and mirrors the new name
// into any team roster entries. Reports whether the player was found.
func (r *Room) setUsername(connID uuid.UUID, username string) bool {
	player := r.findPlayer(connID)
	if player == nil {
		return false
	}
	player.Username = username
	for i := range r.RedTeam {
		if r.RedTeam[i].ID == connID {
			r.RedTeam[i].Username = username
		}
	}
	for i := range r.BlueTeam {
		if r.BlueTeam[i].ID == connID {
			r.BlueTeam[i].Username = username
		}
	}
	return true
}
