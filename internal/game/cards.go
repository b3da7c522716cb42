package game

import "math/rand"

// Card is a bare rank 1..10. The snipe hold'em deck has no suits: four
// copies of each rank, 40 cards total.
type Card int

const (
	MinRank  = 1
	MaxRank  = 10
	DeckSize = 40
)

// NewDeck returns a freshly shuffled 40-card deck. The rng is injected so
// a hand can be replayed deterministically in tests.
func NewDeck(rng *rand.Rand) []Card {
	cards := make([]Card, 0, DeckSize)
	for copies := 0; copies < 4; copies++ {
		for r := MinRank; r <= MaxRank; r++ {
			cards = append(cards, Card(r))
		}
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
