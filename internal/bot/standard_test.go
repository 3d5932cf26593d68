package bot

import (
	"testing"

	"revolution/internal/domain"
)

func card(rank, suit int) domain.Card { return domain.Card{Rank: rank, Suit: suit} }

func mustLast(t *testing.T, cards []domain.Card, twosHigh bool) *domain.Play {
	t.Helper()
	play := domain.BuildPlay(cards, twosHigh)
	if play.Type == domain.PlayInvalid {
		t.Fatalf("fixture %v is not a combination", cards)
	}
	return &play
}

func TestLeadDumpsLonelyLowSingle(t *testing.T) {
	view := View{
		Hand: []domain.Card{
			card(4, 0), // lonely
			card(6, 0), card(6, 1), // pair worth keeping
			card(9, 0), card(9, 1),
			card(domain.RankKing, 2), // lonely but high
		},
		Leading:        true,
		OpponentCounts: []int{10, 10, 10},
	}

	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if move.Pass {
		t.Fatal("bot passed while leading")
	}
	if len(move.Cards) != 1 || move.Cards[0] != card(4, 0) {
		t.Errorf("led %v, want the lonely 4", move.Cards)
	}
}

func TestLeadKeepsRunCardsOutOfPairDumps(t *testing.T) {
	// The 5s pair is embedded in a 4-5-6 run; the free pair of 10s should be
	// preferred once no lonely singles remain.
	view := View{
		Hand: []domain.Card{
			card(4, 0), card(5, 0), card(5, 1), card(6, 0),
			card(10, 0), card(10, 1),
		},
		Leading:        true,
		OpponentCounts: []int{8, 8, 8},
	}

	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	got := domain.BuildPlay(move.Cards, false)
	if got.Type != domain.PlayPair || got.Rank != 10 {
		t.Errorf("led %v, want the pair of 10s", move.Cards)
	}
}

func TestLeadSeizesControlUnderThreat(t *testing.T) {
	view := View{
		Hand: []domain.Card{
			card(3, 0),
			card(8, 0), card(8, 1), card(8, 2),
			card(domain.RankJack, 0),
		},
		Leading:        true,
		OpponentCounts: []int{2, 9, 9}, // someone is nearly out
	}

	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	got := domain.BuildPlay(move.Cards, false)
	if got.Type != domain.PlayTriple {
		t.Errorf("led %v, want the triple to seize control", move.Cards)
	}
}

func TestExitPlanning(t *testing.T) {
	tests := []struct {
		name string
		hand []domain.Card
		want int // expected number of cards in the lead
	}{
		{
			name: "Last card goes out",
			hand: []domain.Card{card(6, 2)},
			want: 1,
		},
		{
			name: "Exact-fit triple goes out",
			hand: []domain.Card{card(7, 0), card(7, 1), card(7, 2)},
			want: 3,
		},
		{
			name: "Exact-fit quad goes out",
			hand: []domain.Card{card(7, 0), card(7, 1), card(7, 2), card(7, 3)},
			want: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := View{Hand: tt.hand, Leading: true, OpponentCounts: []int{5, 5, 5}}
			move, err := (&StandardBot{}).CalculateMove(view)
			if err != nil {
				t.Fatal(err)
			}
			if move.Pass || len(move.Cards) != tt.want {
				t.Errorf("move = %+v, want %d cards", move, tt.want)
			}
		})
	}
}

func TestExitLeadsStrongerHalfFirst(t *testing.T) {
	// Pair of kings plus a lone 5: lead the kings, keep the cheap exit.
	view := View{
		Hand:           []domain.Card{card(5, 0), card(domain.RankKing, 0), card(domain.RankKing, 1)},
		Leading:        true,
		OpponentCounts: []int{5, 5, 5},
	}
	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	got := domain.BuildPlay(move.Cards, false)
	if got.Type != domain.PlayPair || got.Rank != domain.RankKing {
		t.Errorf("led %v, want the pair of kings", move.Cards)
	}
}

func TestFollowPlaysWeakestWinner(t *testing.T) {
	view := View{
		Hand:           []domain.Card{card(6, 0), card(9, 0), card(domain.RankAce, 0)},
		LastPlay:       mustLast(t, []domain.Card{card(7, 3)}, false),
		OpponentCounts: []int{9, 9, 9},
	}
	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if move.Pass || move.Cards[0] != card(9, 0) {
		t.Errorf("move = %+v, want the 9 (weakest winner)", move)
	}
}

func TestFollowPressesMiddleUnderThreat(t *testing.T) {
	view := View{
		Hand: []domain.Card{
			card(9, 0), card(domain.RankJack, 0), card(domain.RankAce, 0),
		},
		LastPlay:       mustLast(t, []domain.Card{card(7, 3)}, false),
		OpponentCounts: []int{1, 9, 9},
	}
	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if move.Pass || move.Cards[0] != card(domain.RankJack, 0) {
		t.Errorf("move = %+v, want the middle candidate", move)
	}
}

func TestFollowPassesWhenBeaten(t *testing.T) {
	view := View{
		Hand:           []domain.Card{card(4, 0), card(5, 0), card(8, 1)},
		LastPlay:       mustLast(t, []domain.Card{card(domain.RankAce, 3)}, false),
		OpponentCounts: []int{9, 9, 9},
	}
	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if !move.Pass {
		t.Errorf("move = %+v, want a pass", move)
	}
}

func TestFollowBombRules(t *testing.T) {
	bombHand := []domain.Card{
		card(5, 0), card(5, 1), card(6, 0), card(6, 1), card(7, 0), card(7, 1),
	}

	// Only a higher bomb answers a bomb.
	lowBomb := mustLast(t, []domain.Card{
		card(3, 0), card(3, 1), card(4, 0), card(4, 1), card(5, 2), card(5, 3),
	}, false)
	view := View{Hand: bombHand, LastPlay: lowBomb, OpponentCounts: []int{9, 9, 9}}
	move, err := (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if move.Pass {
		t.Fatal("bot held a higher bomb and passed")
	}
	if domain.BuildPlay(move.Cards, false).Type != domain.PlayBomb {
		t.Errorf("answered a bomb with %v", move.Cards)
	}

	// A short hand spends its bomb rather than passing on an unanswerable
	// quad.
	quad := mustLast(t, []domain.Card{
		card(domain.RankAce, 0), card(domain.RankAce, 1), card(domain.RankAce, 2), card(domain.RankAce, 3),
	}, false)
	view = View{Hand: bombHand, LastPlay: quad, OpponentCounts: []int{9, 9, 9}}
	move, err = (&StandardBot{}).CalculateMove(view)
	if err != nil {
		t.Fatal(err)
	}
	if move.Pass || domain.BuildPlay(move.Cards, false).Type != domain.PlayBomb {
		t.Errorf("move = %+v, want the bomb", move)
	}
}

func TestOpeningIncludesDesignatedCard(t *testing.T) {
	opener := domain.OpeningCard

	tests := []struct {
		name string
		hand []domain.Card
		want int
	}{
		{
			name: "Longest run through the opener",
			hand: []domain.Card{card(3, 0), card(4, 1), card(5, 0), card(6, 2), card(9, 0)},
			want: 4,
		},
		{
			name: "Rank group with the opener",
			hand: []domain.Card{card(3, 0), card(3, 2), card(9, 0)},
			want: 2,
		},
		{
			name: "Lone opener",
			hand: []domain.Card{card(3, 0), card(9, 0), card(domain.RankKing, 1)},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := View{
				Hand:           tt.hand,
				Leading:        true,
				MustInclude:    &opener,
				OpponentCounts: []int{13, 13, 13},
			}
			move, err := (&StandardBot{}).CalculateMove(view)
			if err != nil {
				t.Fatal(err)
			}
			if move.Pass || len(move.Cards) != tt.want {
				t.Fatalf("move = %+v, want %d cards", move, tt.want)
			}
			if !domain.ContainsCard(move.Cards, opener) {
				t.Errorf("opening %v does not include %v", move.Cards, opener)
			}
		})
	}
}

func TestContributeCards(t *testing.T) {
	// Scenario: [3c 4s 9d Kh] gives away 3-clubs and 4-spades.
	hand := []domain.Card{
		card(domain.RankKing, domain.SuitHearts),
		card(9, domain.SuitDiamonds),
		card(3, domain.SuitClubs),
		card(4, domain.SuitSpades),
	}
	give := (&StandardBot{}).ContributeCards(hand, 2, false)
	if len(give) != 2 || give[0] != card(3, domain.SuitClubs) || give[1] != card(4, domain.SuitSpades) {
		t.Errorf("contributed %v, want the two lowest", give)
	}
}

// The brain must never return a combination the validator rejects, whatever
// the table shows.
func TestMovesAlwaysLegal(t *testing.T) {
	hands := [][]domain.Card{
		{card(4, 0), card(4, 1), card(5, 0), card(6, 0), card(7, 2), card(10, 3)},
		{card(3, 0), card(3, 1), card(4, 2), card(4, 3), card(5, 0), card(5, 1)},
		{card(9, 2), card(domain.RankJack, 1), card(domain.RankAce, 3)},
		{card(2, 0), card(2, 1), card(domain.RankKing, 0)},
	}
	lasts := []*domain.Play{
		nil,
		mustLast(t, []domain.Card{card(8, 0)}, false),
		mustLast(t, []domain.Card{card(6, 0), card(6, 1)}, false),
		mustLast(t, []domain.Card{card(5, 0), card(6, 1), card(7, 2)}, false),
		mustLast(t, []domain.Card{
			card(9, 0), card(9, 1), card(10, 0), card(10, 1), card(domain.RankJack, 0), card(domain.RankJack, 1),
		}, false),
	}

	for _, hand := range hands {
		for _, last := range lasts {
			for _, counts := range [][]int{{9, 9, 9}, {1, 9, 9}} {
				view := View{
					Hand:           hand,
					LastPlay:       last,
					Leading:        last == nil,
					OpponentCounts: counts,
				}
				move, err := (&StandardBot{}).CalculateMove(view)
				if err != nil {
					t.Fatal(err)
				}
				if move.Pass {
					continue
				}
				if _, err := domain.ValidatePlay(move.Cards, last, false); err != nil {
					t.Errorf("hand %v vs %+v: illegal move %v (%v)", hand, last, move.Cards, err)
				}
			}
		}
	}
}
