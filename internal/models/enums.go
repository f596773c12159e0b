package models

// Team identifies one of the two playing teams. The empty string means
// the player has not picked a team yet.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opposite returns the other team.
func (t Team) Opposite() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Role is a player's function within a team. The empty string means
// the player has not picked a role yet.
type Role string

const (
	RoleSpymaster Role = "spymaster"
	RoleOperative Role = "operative"
)

// GameState tracks where a room is in its lifecycle.
type GameState string

const (
	StateWaiting GameState = "waiting"
	StatePlaying GameState = "playing"
	StateEnded   GameState = "ended"
)

// CardTeam is the hidden allegiance of a board card.
type CardTeam string

const (
	CardRed      CardTeam = "red"
	CardBlue     CardTeam = "blue"
	CardNeutral  CardTeam = "neutral"
	CardAssassin CardTeam = "assassin"
)
