package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Validation failures carry the human-readable reason shown to the acting
// player. State is never mutated on rejection.
var (
	ErrEmptyPlay          = errors.New("no cards selected")
	ErrInvalidCombination = errors.New("invalid combination")
	ErrBombTooLow         = errors.New("must play a higher bomb")
	ErrNeedBomb           = errors.New("only a bomb can beat a bomb")
	ErrDoesNotBeat        = errors.New("play does not beat the table")
)

// ValidatePlay decides whether cards may be played over lastPlay. A nil
// lastPlay means the seat is leading, where any classified combination is
// legal. On success the returned Play carries the cached comparison fields.
func ValidatePlay(cards []Card, lastPlay *Play, twosHigh bool) (Play, error) {
	if len(cards) == 0 {
		return Play{}, ErrEmptyPlay
	}

	play := BuildPlay(cards, twosHigh)
	if play.Type == PlayInvalid {
		return Play{}, ErrInvalidCombination
	}

	if lastPlay == nil {
		return play, nil
	}

	// Bombs beat everything except a bigger bomb.
	if play.Type == PlayBomb {
		if lastPlay.Type == PlayBomb && play.BombRank <= lastPlay.BombRank {
			return Play{}, ErrBombTooLow
		}
		return play, nil
	}
	if lastPlay.Type == PlayBomb {
		return Play{}, ErrNeedBomb
	}

	if play.Type != lastPlay.Type {
		return Play{}, fmt.Errorf("must play a %s", lastPlay.Type)
	}
	if play.Count != lastPlay.Count {
		return Play{}, fmt.Errorf("must play %d cards", lastPlay.Count)
	}

	switch play.Type {
	case PlayRun:
		// Compare (rank, suit) of the high card lexicographically.
		newHigh := RankValue(play.RunHigh.Rank, twosHigh)
		oldHigh := RankValue(lastPlay.RunHigh.Rank, twosHigh)
		if newHigh > oldHigh {
			return play, nil
		}
		if newHigh == oldHigh && play.RunHigh.Suit > lastPlay.RunHigh.Suit {
			return play, nil
		}
	default:
		// Rank first, suit only breaks exact rank ties.
		if play.Rank > lastPlay.Rank {
			return play, nil
		}
		if play.Rank == lastPlay.Rank && play.HighSuit > lastPlay.HighSuit {
			return play, nil
		}
	}

	return Play{}, ErrDoesNotBeat
}

// CanPlay is a fast feasibility probe: does the hand hold any legal response?
// It backs "must pass" hints only; the authoritative check is always
// ValidatePlay on the chosen cards. Run feasibility is approximated by a
// card-count check rather than full enumeration, which can misreport edge
// cases where the hand has enough cards but no actual consecutive sequence.
func CanPlay(hand []Card, lastPlay *Play, twosHigh bool) bool {
	if lastPlay == nil {
		return len(hand) > 0
	}

	if hasBeatingBomb(hand, lastPlay, twosHigh) {
		return true
	}
	if lastPlay.Type == PlayBomb {
		return false
	}

	switch lastPlay.Type {
	case PlayRun:
		return len(hand) >= lastPlay.Count
	default:
		groups := groupByRank(hand)
		for _, group := range groups {
			if len(group) < lastPlay.Count {
				continue
			}
			if _, err := ValidatePlay(group[:lastPlay.Count], lastPlay, twosHigh); err == nil {
				return true
			}
			// The strongest-suited subset is the real test for a rank tie.
			if _, err := ValidatePlay(group[len(group)-lastPlay.Count:], lastPlay, twosHigh); err == nil {
				return true
			}
		}
		return false
	}
}

func hasBeatingBomb(hand []Card, lastPlay *Play, twosHigh bool) bool {
	for _, bomb := range EnumerateBombs(hand, twosHigh) {
		if _, err := ValidatePlay(bomb, lastPlay, twosHigh); err == nil {
			return true
		}
	}
	return false
}

// groupByRank buckets a hand into same-rank groups, each sorted by suit,
// returned in ascending rank order.
func groupByRank(hand []Card) [][]Card {
	byRank := make(map[int][]Card)
	for _, c := range hand {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	groups := make([][]Card, 0, len(byRank))
	for _, group := range byRank {
		SortHand(group, false)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0].Rank < groups[j][0].Rank })
	return groups
}

// EnumerateBombs lists every three-consecutive-pair bomb the hand can form,
// using the lowest-suited pair per rank, ascending by bomb rank.
func EnumerateBombs(hand []Card, twosHigh bool) [][]Card {
	pairs := make(map[int][]Card) // rank value -> lowest two cards of that rank
	for _, group := range groupByRank(hand) {
		if len(group) >= 2 {
			pairs[RankValue(group[0].Rank, twosHigh)] = group[:2]
		}
	}

	var bombs [][]Card
	for v := RankTwo; v <= RankAce+1; v++ {
		first, ok1 := pairs[v]
		second, ok2 := pairs[v+1]
		third, ok3 := pairs[v+2]
		if ok1 && ok2 && ok3 {
			bomb := make([]Card, 0, 6)
			bomb = append(bomb, first...)
			bomb = append(bomb, second...)
			bomb = append(bomb, third...)
			bombs = append(bombs, bomb)
		}
	}
	return bombs
}
