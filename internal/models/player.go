package models

import "github.com/google/uuid"

// Player is a connected member of a room. ID is connection-scoped and
// changes when the player reconnects; identity across reconnects is
// carried by Username instead.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Team     Team      `json:"team,omitempty"`
	Role     Role      `json:"role,omitempty"`
}

// TeamMember is the lightweight roster entry kept on redTeam/blueTeam.
// Every entry must correspond to a Player with the matching Team.
type TeamMember struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role,omitempty"`
}
