package models

import "time"

// Clue is a spymaster hint. Clues are appended to the room's history
// and never removed until the next reset.
type Clue struct {
	Word      string    `json:"word"`
	Number    int       `json:"number"`
	Team      Team      `json:"team"`
	Timestamp time.Time `json:"timestamp"`
}
