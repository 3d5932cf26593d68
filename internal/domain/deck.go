package domain

import "math/rand"

// DeckSize is the size of a full deck, one card per (rank, suit) pair.
const DeckSize = 52

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for r := RankTwo; r <= RankAce; r++ {
		for s := SuitClubs; s <= SuitHearts; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// CardsPerPlayer returns how many cards each seat is dealt for a table size.
// The remainder (52 mod playerCount) is burned in round one or handed to the
// previous round's worst finishers afterwards.
func CardsPerPlayer(playerCount int) int {
	return DeckSize / playerCount
}
