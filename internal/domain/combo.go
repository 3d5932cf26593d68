package domain

import "sort"

// PlayType represents the type of card combination.
type PlayType int

const (
	PlayInvalid PlayType = iota
	PlaySingle
	PlayPair
	PlayTriple
	PlayQuad
	PlayRun
	PlayBomb
)

func (t PlayType) String() string {
	switch t {
	case PlaySingle:
		return "single"
	case PlayPair:
		return "pair"
	case PlayTriple:
		return "triple"
	case PlayQuad:
		return "quad"
	case PlayRun:
		return "run"
	case PlayBomb:
		return "bomb"
	default:
		return "invalid"
	}
}

// Play is an accepted combination of cards together with the derived fields
// the comparison rules need. The derived fields are always a pure function of
// Cards and the twos-high toggle; they are cached here so that the last-play
// record can be compared without reclassifying.
type Play struct {
	Cards []Card   `json:"cards"`
	Type  PlayType `json:"type"`
	Count int      `json:"count"`

	// Rank is the anchor rank value for single/pair/triple/quad plays.
	Rank int `json:"rank,omitempty"`
	// HighSuit is the max suit among same-rank plays, used as a tie-break.
	HighSuit int `json:"highSuit,omitempty"`
	// RunHigh is the highest-ranked card of a run.
	RunHigh Card `json:"runHigh,omitempty"`
	// BombRank is the max rank value across a bomb's six cards.
	BombRank int `json:"bombRank,omitempty"`
}

// Classify determines the combination type of a card multiset. Recognition
// order matters: a six-card set is tested as a bomb first, so three same-rank
// pairs that are not consecutive stay invalid rather than being reinterpreted.
func Classify(cards []Card, twosHigh bool) PlayType {
	if len(cards) == 0 {
		return PlayInvalid
	}

	if len(cards) == 6 && isBomb(cards, twosHigh) {
		return PlayBomb
	}

	if allSameRank(cards) {
		switch len(cards) {
		case 1:
			return PlaySingle
		case 2:
			return PlayPair
		case 3:
			return PlayTriple
		case 4:
			return PlayQuad
		}
		return PlayInvalid
	}

	if isRun(cards, twosHigh) {
		return PlayRun
	}

	return PlayInvalid
}

// BuildPlay classifies the cards and fills the derived comparison fields.
// Returns a Play with Type PlayInvalid if the cards form no legal combination.
func BuildPlay(cards []Card, twosHigh bool) Play {
	playType := Classify(cards, twosHigh)
	play := Play{
		Cards: append([]Card(nil), cards...),
		Type:  playType,
		Count: len(cards),
	}
	SortHand(play.Cards, twosHigh)

	switch playType {
	case PlaySingle, PlayPair, PlayTriple, PlayQuad:
		play.Rank = RankValue(cards[0].Rank, twosHigh)
		play.HighSuit = HighestSuit(cards)
	case PlayRun:
		play.RunHigh = RunHighCard(cards, twosHigh)
	case PlayBomb:
		play.BombRank = BombHighRank(cards, twosHigh)
	}
	return play
}

// RunHighCard returns the highest-ranked card of a run. Ranks within a run are
// distinct, so the suit of the returned card is informational only.
func RunHighCard(cards []Card, twosHigh bool) Card {
	high := cards[0]
	for _, c := range cards[1:] {
		if RankValue(c.Rank, twosHigh) > RankValue(high.Rank, twosHigh) {
			high = c
		}
	}
	return high
}

// BombHighRank returns the max rank value across a bomb's cards.
func BombHighRank(cards []Card, twosHigh bool) int {
	high := 0
	for _, c := range cards {
		if v := RankValue(c.Rank, twosHigh); v > high {
			high = v
		}
	}
	return high
}

// HighestSuit returns the max suit value in a same-rank set.
func HighestSuit(cards []Card) int {
	high := cards[0].Suit
	for _, c := range cards[1:] {
		if c.Suit > high {
			high = c.Suit
		}
	}
	return high
}

func allSameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	r := cards[0].Rank
	for _, c := range cards {
		if c.Rank != r {
			return false
		}
	}
	return true
}

// isRun checks for 3+ cards of strictly consecutive, distinct rank values.
// Suits are irrelevant to run validity.
func isRun(cards []Card, twosHigh bool) bool {
	if len(cards) < 3 {
		return false
	}
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = RankValue(c.Rank, twosHigh)
	}
	sort.Ints(values)

	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}

// isBomb checks for exactly three ranks of exactly two cards each, with the
// three rank values consecutive.
func isBomb(cards []Card, twosHigh bool) bool {
	if len(cards) != 6 {
		return false
	}
	counts := make(map[int]int, 3)
	for _, c := range cards {
		counts[RankValue(c.Rank, twosHigh)]++
	}
	if len(counts) != 3 {
		return false
	}
	values := make([]int, 0, 3)
	for v, n := range counts {
		if n != 2 {
			return false
		}
		values = append(values, v)
	}
	sort.Ints(values)
	return values[1] == values[0]+1 && values[2] == values[1]+1
}
