// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/pauloqueiros/codinomes/internal/models"
)

// Board layout constants. The card distribution follows the official
// Codenames Pictures rules: 25 cards in a 5x5 grid, with the starting
// team holding 9 cards.
const (
	DeckSize      = 25
	RedCards      = 9
	BlueCards     = 8
	NeutralCards  = 7
	AssassinCards = 1

	// ImagePoolSize is the number of distinct card images shipped with
	// the client. It must stay >= DeckSize for the unique draw below.
	ImagePoolSize = 279
)

// GenerateDeck builds a fresh shuffled 25-card deck: 9 red, 8 blue,
// 7 neutral and 1 assassin, each card holding a distinct imageId in
// [1, ImagePoolSize]. Card IDs are the stable board positions 0-24.
func GenerateDeck() []models.Card {
	teams := make([]models.CardTeam, 0, DeckSize)
	for i := 0; i < RedCards; i++ {
		teams = append(teams, models.CardRed)
	}
	for i := 0; i < BlueCards; i++ {
		teams = append(teams, models.CardBlue)
	}
	for i := 0; i < NeutralCards; i++ {
		teams = append(teams, models.CardNeutral)
	}
	for i := 0; i < AssassinCards; i++ {
		teams = append(teams, models.CardAssassin)
	}
	rand.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	// Draw image ids without replacement: shuffle the whole pool and
	// take the first DeckSize entries, so the draw can never spin on
	// collisions.
	pool := make([]int, ImagePoolSize)
	for i := range pool {
		pool[i] = i + 1
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	deck := make([]models.Card, DeckSize)
	for i := 0; i < DeckSize; i++ {
		deck[i] = models.Card{
			ID:      i,
			ImageID: pool[i],
			Team:    teams[i],
		}
	}
	return deck
}

// startingTeam returns the team that moves first for the given deck,
// which is whichever team holds 9 cards.
func startingTeam(deck []models.Card) models.Team {
	red := 0
	for _, c := range deck {
		if c.Team == models.CardRed {
			red++
		}
	}
	if red == RedCards {
		return models.TeamRed
	}
	return models.TeamBlue
}
