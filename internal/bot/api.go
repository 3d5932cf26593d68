package bot

import "revolution/internal/domain"

// Move represents the decision made by the AI: a combination to play, or a
// pass.
type Move struct {
	Pass  bool
	Cards []domain.Card
}

// View is the read-only slice of table state a seat's brain is allowed to
// see: its own hand, the public table, and opponent card counts. Brains hold
// no memory beyond this; every decision is recomputed from scratch.
type View struct {
	Hand           []domain.Card
	LastPlay       *domain.Play
	TwosHigh       bool
	OpponentCounts []int // hand sizes of non-finished opponents
	Leading        bool
	// MustInclude forces the opening play to contain a designated card
	// (round one's opening convention). Nil otherwise.
	MustInclude *domain.Card
}

// Brain is the interface all bot strategies implement.
type Brain interface {
	CalculateMove(view View) (Move, error)
	// ContributeCards selects which cards to give away during trading.
	ContributeCards(hand []domain.Card, n int, twosHigh bool) []domain.Card
}

// dangerous reports whether any opponent is close enough to going out that
// conserving strength stops being the priority.
func (v View) dangerous() bool {
	for _, n := range v.OpponentCounts {
		if n > 0 && n <= 2 {
			return true
		}
	}
	return false
}
