package domain

import (
	"fmt"
	"sort"
)

// Suit ordering is fixed: clubs < spades < diamonds < hearts. The suit only
// ever breaks ties between equal-rank plays, never drives primary ranking.
const (
	SuitClubs = iota
	SuitSpades
	SuitDiamonds
	SuitHearts
)

// Rank constants for the face cards. Numeric ranks use their own value.
const (
	RankTwo   = 2
	RankThree = 3
	RankTen   = 10
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Card is a single playing card. Rank runs 2..14 (J=11, Q=12, K=13, A=14).
type Card struct {
	Rank int `json:"rank"`
	Suit int `json:"suit"`
}

var suitNames = [4]string{"clubs", "spades", "diamonds", "hearts"}

var rankNames = map[int]string{
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankAce:   "A",
}

// ID returns the stable identifier for a card, e.g. "K-hearts" or "3-clubs".
func (c Card) ID() string {
	return fmt.Sprintf("%s-%s", rankName(c.Rank), suitNames[c.Suit])
}

func (c Card) String() string { return c.ID() }

func rankName(rank int) string {
	if name, ok := rankNames[rank]; ok {
		return name
	}
	return fmt.Sprintf("%d", rank)
}

// RankValue maps a rank to its comparison value. Under the twos-high rule the
// 2 outranks the Ace; otherwise ranks compare by their natural value.
func RankValue(rank int, twosHigh bool) int {
	if twosHigh && rank == RankTwo {
		return RankAce + 1
	}
	return rank
}

// CardPower collapses rank value and suit into a single comparable power.
func CardPower(c Card, twosHigh bool) int {
	return RankValue(c.Rank, twosHigh)*4 + c.Suit
}

// SortHand orders cards ascending by (rank value, suit).
func SortHand(cards []Card, twosHigh bool) {
	sort.Slice(cards, func(i, j int) bool {
		return CardPower(cards[i], twosHigh) < CardPower(cards[j], twosHigh)
	})
}

// OpeningCard is the card whose holder leads round one. The convention is
// fixed regardless of the twos-high toggle.
var OpeningCard = Card{Rank: RankThree, Suit: SuitClubs}

// ContainsCard reports whether the given card appears in the set.
func ContainsCard(cards []Card, target Card) bool {
	for _, c := range cards {
		if c == target {
			return true
		}
	}
	return false
}

// RemoveCards removes the specified cards from a hand and returns the updated
// hand. Cards not present are left alone; OwnsCards guards against that case.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	removeCounts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		removeCounts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count, ok := removeCounts[card]; ok && count > 0 {
			removeCounts[card] = count - 1
			continue
		}
		updated = append(updated, card)
	}
	return updated
}

// OwnsCards reports whether every requested card (with multiplicity) is held.
func OwnsCards(hand []Card, cards []Card) bool {
	held := make(map[Card]int, len(hand))
	for _, c := range hand {
		held[c]++
	}
	for _, c := range cards {
		if held[c] == 0 {
			return false
		}
		held[c]--
	}
	return true
}
