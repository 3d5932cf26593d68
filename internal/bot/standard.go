package bot

import "revolution/internal/domain"

// StandardBot is the heuristic strategy. It is search-free: each decision is
// a single pass over the hand's structure against the public table state.
// Every branch either reuses validator-approved candidates or plays from
// exact groups that are trivially legal when leading, so the returned move is
// legal by construction; callers still validate as a safety net.
type StandardBot struct{}

// NewBrain returns the standard heuristic brain.
func NewBrain() Brain {
	return &StandardBot{}
}

func (b *StandardBot) CalculateMove(view View) (Move, error) {
	if len(view.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	shape := analyzeHand(view.Hand, view.TwosHigh)

	var cards []domain.Card
	if view.Leading || view.LastPlay == nil {
		cards = b.lead(view, shape)
	} else {
		cards = b.follow(view, shape)
	}

	if cards == nil {
		return Move{Pass: true}, nil
	}
	// Self-check; a rejection here means a bug upstream, surfaced as a pass.
	if _, err := domain.ValidatePlay(cards, view.LastPlay, view.TwosHigh); err != nil {
		return Move{Pass: true}, nil
	}
	return Move{Cards: cards}, nil
}

func (b *StandardBot) lead(view View, shape handShape) []domain.Card {
	if view.MustInclude != nil {
		return openingWith(*view.MustInclude, view.Hand, shape, view.TwosHigh)
	}

	// With an opponent about to go out, seize control with the strongest
	// structure available rather than dumping trash.
	if view.dangerous() {
		for _, pick := range [][][]domain.Card{
			shape.bombs,
			shape.triples(),
			shape.runs,
			shape.pairs(),
		} {
			if len(pick) > 0 {
				best := pick[0]
				for _, m := range pick[1:] {
					if moveValue(m, view.TwosHigh) > moveValue(best, view.TwosHigh) {
						best = m
					}
				}
				return best
			}
		}
		return highestSingle(view.Hand, view.TwosHigh)
	}

	if len(view.Hand) <= 4 {
		return b.exitLead(view, shape)
	}

	// Dump order: comboless low singles, then true pairs outside runs, the
	// shortest run, triples, quads, and finally the lowest single.
	if singles := shape.lonelySingles(view.TwosHigh); len(singles) > 0 {
		return []domain.Card{singles[0]}
	}
	var freePairs [][]domain.Card
	for _, pair := range shape.pairs() {
		if !shape.inAnyRun(pair[0], view.TwosHigh) {
			freePairs = append(freePairs, pair)
		}
	}
	if len(freePairs) > 0 {
		sortByMoveValue(freePairs, view.TwosHigh)
		return freePairs[0]
	}
	if len(shape.runs) > 0 {
		shortest := shape.runs[0]
		for _, run := range shape.runs[1:] {
			if len(run) < len(shortest) {
				shortest = run
			}
		}
		return shortest
	}
	if triples := shape.triples(); len(triples) > 0 {
		return triples[0]
	}
	if quads := shape.quads(); len(quads) > 0 {
		return quads[0]
	}
	return lowestSingle(view.Hand, view.TwosHigh)
}

// exitLead plans the way out when four or fewer cards remain.
func (b *StandardBot) exitLead(view View, shape handShape) []domain.Card {
	hand := view.Hand
	if len(hand) == 1 {
		return []domain.Card{hand[0]}
	}

	// Exact fit: the whole hand is one group, out in a single play.
	for _, g := range shape.groups {
		if len(g) == len(hand) {
			return g
		}
	}

	// A group plus one spare single: lead the higher-valued part so the
	// cheaper one can exit on the next turn.
	if len(shape.groups) == 2 {
		low, high := shape.groups[0], shape.groups[1]
		if len(low) == 1 || len(high) == 1 {
			if moveValue(low, view.TwosHigh) > moveValue(high, view.TwosHigh) {
				return low
			}
			return high
		}
	}

	return lowestSingle(hand, view.TwosHigh)
}

func (b *StandardBot) follow(view View, shape handShape) []domain.Card {
	last := view.LastPlay

	// Nothing answers a bomb except a bigger bomb.
	if last.Type == domain.PlayBomb {
		for _, bomb := range shape.bombs {
			if _, err := domain.ValidatePlay(bomb, last, view.TwosHigh); err == nil {
				return bomb
			}
		}
		return nil
	}

	var candidates [][]domain.Card
	switch last.Type {
	case domain.PlaySingle:
		for _, c := range view.Hand {
			candidates = append(candidates, []domain.Card{c})
		}
	case domain.PlayPair:
		candidates = shape.pairs()
		// A triple or quad can spare a pair when nothing else fits.
		for _, g := range shape.groups {
			if len(g) > 2 {
				candidates = append(candidates, g[len(g)-2:])
			}
		}
	case domain.PlayTriple:
		candidates = shape.triples()
		for _, g := range shape.quads() {
			candidates = append(candidates, g[1:])
		}
	case domain.PlayQuad:
		candidates = shape.quads()
	case domain.PlayRun:
		candidates = shape.runWindows(last.Count)
	}

	var accepted [][]domain.Card
	for _, cards := range candidates {
		if _, err := domain.ValidatePlay(cards, last, view.TwosHigh); err == nil {
			accepted = append(accepted, cards)
		}
	}

	if len(accepted) > 0 {
		sortByMoveValue(accepted, view.TwosHigh)
		// Default to the weakest winner; under threat spend from the middle
		// to press without exhausting the top of the hand.
		if view.dangerous() && len(accepted) > 1 {
			return accepted[len(accepted)/2]
		}
		return accepted[0]
	}

	// No same-type answer. A bomb is worth spending when the table is hot,
	// the hand is short enough to cash out, or bombs are abundant.
	if len(shape.bombs) > 0 && (view.dangerous() || len(view.Hand) <= 6 || len(shape.bombs) >= 2) {
		return shape.bombs[0]
	}
	return nil
}

// openingWith builds the round-opening play around a designated card:
// the longest run through it, else its full rank group, else the card alone.
func openingWith(card domain.Card, hand []domain.Card, shape handShape, twosHigh bool) []domain.Card {
	var best []domain.Card
	for _, run := range shape.runs {
		if domain.ContainsCard(run, card) && len(run) > len(best) {
			best = run
		}
	}
	if best != nil {
		return best
	}

	for _, g := range shape.groups {
		if domain.ContainsCard(g, card) && len(g) > 1 {
			return g
		}
	}
	return []domain.Card{card}
}

func lowestSingle(hand []domain.Card, twosHigh bool) []domain.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if domain.CardPower(c, twosHigh) < domain.CardPower(best, twosHigh) {
			best = c
		}
	}
	return []domain.Card{best}
}

func highestSingle(hand []domain.Card, twosHigh bool) []domain.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if domain.CardPower(c, twosHigh) > domain.CardPower(best, twosHigh) {
			best = c
		}
	}
	return []domain.Card{best}
}
