package bot

import (
	"sort"

	"revolution/internal/domain"
)

// handShape is the per-decision breakdown of a hand into playable structures.
// Recomputed on every call; brains keep no state between turns.
type handShape struct {
	// groups holds same-rank sets (size 1..4) ascending by rank value, each
	// sorted by suit.
	groups [][]domain.Card
	// runs holds the maximal consecutive-rank sequences of length >= 3, one
	// lowest-suited card per rank to conserve high suits.
	runs [][]domain.Card
	// bombs holds the three-consecutive-pair sets, ascending by bomb rank.
	bombs [][]domain.Card
}

func analyzeHand(hand []domain.Card, twosHigh bool) handShape {
	byValue := make(map[int][]domain.Card)
	for _, c := range hand {
		v := domain.RankValue(c.Rank, twosHigh)
		byValue[v] = append(byValue[v], c)
	}

	values := make([]int, 0, len(byValue))
	for v := range byValue {
		sort.Slice(byValue[v], func(i, j int) bool { return byValue[v][i].Suit < byValue[v][j].Suit })
		values = append(values, v)
	}
	sort.Ints(values)

	shape := handShape{}
	for _, v := range values {
		shape.groups = append(shape.groups, byValue[v])
	}

	// Maximal runs: walk the distinct values and cut at every gap.
	start := 0
	for i := 1; i <= len(values); i++ {
		if i < len(values) && values[i] == values[i-1]+1 {
			continue
		}
		if i-start >= 3 {
			run := make([]domain.Card, 0, i-start)
			for _, v := range values[start:i] {
				run = append(run, byValue[v][0])
			}
			shape.runs = append(shape.runs, run)
		}
		start = i
	}

	shape.bombs = domain.EnumerateBombs(hand, twosHigh)
	return shape
}

// runWindows slices every contiguous sub-run of exactly length n out of the
// maximal runs.
func (h handShape) runWindows(n int) [][]domain.Card {
	var out [][]domain.Card
	for _, run := range h.runs {
		for i := 0; i+n <= len(run); i++ {
			out = append(out, run[i:i+n])
		}
	}
	return out
}

// pairs returns the true pairs, i.e. rank groups holding exactly two cards.
func (h handShape) pairs() [][]domain.Card {
	var out [][]domain.Card
	for _, g := range h.groups {
		if len(g) == 2 {
			out = append(out, g)
		}
	}
	return out
}

func (h handShape) triples() [][]domain.Card {
	var out [][]domain.Card
	for _, g := range h.groups {
		if len(g) == 3 {
			out = append(out, g)
		}
	}
	return out
}

func (h handShape) quads() [][]domain.Card {
	var out [][]domain.Card
	for _, g := range h.groups {
		if len(g) == 4 {
			out = append(out, g)
		}
	}
	return out
}

// inAnyRun reports whether the card's rank participates in a maximal run.
func (h handShape) inAnyRun(c domain.Card, twosHigh bool) bool {
	v := domain.RankValue(c.Rank, twosHigh)
	for _, run := range h.runs {
		for _, rc := range run {
			if domain.RankValue(rc.Rank, twosHigh) == v {
				return true
			}
		}
	}
	return false
}

// lonelySingles returns cards that belong to no pair-or-better group and no
// run, ascending by power. These are the natural dumps.
func (h handShape) lonelySingles(twosHigh bool) []domain.Card {
	var out []domain.Card
	for _, g := range h.groups {
		if len(g) == 1 && !h.inAnyRun(g[0], twosHigh) {
			out = append(out, g[0])
		}
	}
	return out
}

// moveValue gives a single comparable strength for a candidate play so
// same-type candidates can be ordered weakest-first.
func moveValue(cards []domain.Card, twosHigh bool) int {
	play := domain.BuildPlay(cards, twosHigh)
	switch play.Type {
	case domain.PlayRun:
		return domain.CardPower(play.RunHigh, twosHigh)
	case domain.PlayBomb:
		return play.BombRank * 4
	default:
		return play.Rank*4 + play.HighSuit
	}
}

func sortByMoveValue(moves [][]domain.Card, twosHigh bool) {
	sort.Slice(moves, func(i, j int) bool {
		return moveValue(moves[i], twosHigh) < moveValue(moves[j], twosHigh)
	})
}
