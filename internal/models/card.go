package models

// Card is one cell of the 5x5 board. ID is the board index (0-24) and
// never changes; Revealed only ever goes false -> true.
type Card struct {
	ID       int      `json:"id"`
	ImageID  int      `json:"imageId"`
	Team     CardTeam `json:"team"`
	Revealed bool     `json:"revealed"`
}
