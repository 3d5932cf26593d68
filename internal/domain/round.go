package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotPlaying      = errors.New("round is not in play")
	ErrUnknownSeat     = errors.New("seat not found")
	ErrSeatFinished    = errors.New("seat already finished")
	ErrNotYourCards    = errors.New("cards not held by seat")
	ErrNothingToPassOn = errors.New("nothing to pass on, must lead")
)

// InitializeRound deals a new round from the supplied (already shuffled) deck
// and returns the fresh aggregate with StatusPlaying. Round one rotates in
// seating order and gives the lead to the holder of the opening card; later
// rounds rotate in the previous finish order with the winner leading, and the
// undealt remainder goes one-each to the previous worst finishers.
func InitializeRound(state *GameState, deck []Card) (*GameState, error) {
	if len(deck) != DeckSize {
		return nil, fmt.Errorf("expected a %d-card deck, got %d", DeckSize, len(deck))
	}

	s := state.Clone()
	prevFinish := s.FinishOrder
	firstRound := s.CurrentRound == 0

	if firstRound {
		s.TurnOrder = make([]string, 0, len(s.Players))
		for _, p := range s.Players {
			s.TurnOrder = append(s.TurnOrder, p.SeatID)
		}
	} else {
		s.TurnOrder = append([]string(nil), prevFinish...)
	}

	perPlayer := CardsPerPlayer(s.Settings.PlayerCount)
	idx := 0
	for _, p := range s.Players {
		p.Hand = append([]Card(nil), deck[idx:idx+perPlayer]...)
		idx += perPlayer
		p.IsFinished = false
		p.FinishPosition = -1
	}

	remainder := deck[idx:]
	s.Burned = nil
	if firstRound {
		s.Burned = append([]Card(nil), remainder...)
	} else {
		// Worst finishers of the previous round absorb the remainder.
		for i, card := range remainder {
			seatID := prevFinish[len(prevFinish)-1-i]
			p := s.PlayerBySeat(seatID)
			p.Hand = append(p.Hand, card)
		}
	}

	for _, p := range s.Players {
		SortHand(p.Hand, s.Settings.TwosHigh)
	}

	s.CurrentRound++
	s.Status = StatusPlaying
	s.LastPlay = nil
	s.PassCount = 0
	s.FinishOrder = nil
	s.AutoSkipped = nil
	s.Trading = nil

	if firstRound {
		s.CurrentSeat = s.holderOf(OpeningCard)
	} else {
		s.CurrentSeat = s.TurnOrder[0]
	}
	s.LeaderSeat = s.CurrentSeat
	return s, nil
}

// ApplyPlay removes the cards from the seat's hand and advances the turn.
// Legality of the combination against the table is the caller's concern (via
// ValidatePlay); this transition handles bookkeeping only.
func ApplyPlay(state *GameState, seatID string, cards []Card) (*GameState, error) {
	if state.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	s := state.Clone()
	p := s.PlayerBySeat(seatID)
	if p == nil {
		return nil, ErrUnknownSeat
	}
	if p.IsFinished {
		return nil, ErrSeatFinished
	}
	if !OwnsCards(p.Hand, cards) {
		return nil, ErrNotYourCards
	}

	play := BuildPlay(cards, s.Settings.TwosHigh)
	leading := s.LastPlay == nil
	p.Hand = RemoveCards(p.Hand, cards)

	if len(p.Hand) == 0 {
		s.finishSeat(p)
		if s.ActiveSeatCount() <= 1 {
			s.closeRound()
			return s, nil
		}
	}

	s.LastPlay = &play
	if leading {
		s.LeaderSeat = seatID
	}
	s.PassCount = 0
	s.AutoSkipped = nil
	s.advanceFrom(seatID)
	return s, nil
}

// ApplyPass increments the pass counter and either closes the trick (once
// everyone but the last-play owner has passed) or advances the turn.
func ApplyPass(state *GameState, seatID string) (*GameState, error) {
	if state.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if state.LastPlay == nil {
		return nil, ErrNothingToPassOn
	}
	s := state.Clone()
	p := s.PlayerBySeat(seatID)
	if p == nil {
		return nil, ErrUnknownSeat
	}
	if p.IsFinished {
		return nil, ErrSeatFinished
	}

	s.PassCount++
	if s.PassCount >= s.ActiveSeatCount()-1 {
		s.closeTrick()
		return s, nil
	}
	s.advanceFrom(seatID)
	return s, nil
}

// finishSeat marks a seat as done and appends it to the finish order.
func (s *GameState) finishSeat(p *PlayerState) {
	p.IsFinished = true
	p.FinishPosition = len(s.FinishOrder)
	s.FinishOrder = append(s.FinishOrder, p.SeatID)
}

// closeTrick clears the table and hands the lead back to the seat that
// opened the trick, or to the next active seat past it if it has finished.
func (s *GameState) closeTrick() {
	s.LastPlay = nil
	s.PassCount = 0
	s.AutoSkipped = nil

	leader := s.PlayerBySeat(s.LeaderSeat)
	if leader != nil && !leader.IsFinished {
		s.CurrentSeat = s.LeaderSeat
	} else {
		s.CurrentSeat = s.nextActiveAfter(s.LeaderSeat)
	}
	s.LeaderSeat = s.CurrentSeat
}

// advanceFrom moves the turn to the next active seat able to follow the
// table. Seats holding fewer cards than the active combination requires are
// skipped and recorded. If every other active seat is skipped, the table
// wraps back to the seat that just acted, which leads a fresh trick.
func (s *GameState) advanceFrom(seatID string) {
	start := s.turnIndex(seatID)
	for step := 1; step < len(s.TurnOrder); step++ {
		candidate := s.TurnOrder[(start+step)%len(s.TurnOrder)]
		p := s.PlayerBySeat(candidate)
		if p == nil || p.IsFinished {
			continue
		}
		if s.LastPlay != nil && len(p.Hand) < s.LastPlay.Count {
			s.AutoSkipped = append(s.AutoSkipped, candidate)
			continue
		}
		s.CurrentSeat = candidate
		return
	}

	actor := s.PlayerBySeat(seatID)
	if actor != nil && !actor.IsFinished {
		s.LastPlay = nil
		s.PassCount = 0
		s.AutoSkipped = nil
		s.CurrentSeat = seatID
		s.LeaderSeat = seatID
		return
	}
	s.closeTrick()
}

// closeRound finalizes the finish order, applies round scoring and titles,
// and moves the aggregate to ROUND_END or GAME_OVER.
func (s *GameState) closeRound() {
	for _, seatID := range s.TurnOrder {
		p := s.PlayerBySeat(seatID)
		if p != nil && !p.IsFinished {
			s.finishSeat(p)
		}
	}

	vector := ScoringVector(s.Settings.PlayerCount)
	for pos, seatID := range s.FinishOrder {
		p := s.PlayerBySeat(seatID)
		if pos < len(vector) {
			p.TotalScore += vector[pos]
		}
		p.CurrentRank = TitleForPosition(pos, s.Settings.PlayerCount)
	}

	s.LastPlay = nil
	s.PassCount = 0
	s.AutoSkipped = nil
	s.CurrentSeat = ""
	s.LeaderSeat = ""

	s.Status = StatusRoundEnd
	for _, p := range s.Players {
		if p.TotalScore >= s.Settings.WinScore {
			s.Status = StatusGameOver
			return
		}
	}
}

// holderOf returns the seat holding the given card, or the first rotation
// seat if nobody does (possible only when the card was burned).
func (s *GameState) holderOf(card Card) string {
	for _, p := range s.Players {
		if ContainsCard(p.Hand, card) {
			return p.SeatID
		}
	}
	return s.TurnOrder[0]
}
