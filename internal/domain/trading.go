package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotTrading      = errors.New("no trade in progress")
	ErrTradingDisabled = errors.New("trading is not enabled")
	ErrNoSuchTrade     = errors.New("no such trade is owed")
	ErrTradeDone       = errors.New("trade already completed")
	ErrWrongTradeSize  = errors.New("wrong number of cards for this trade")
	ErrTooFewFinishers = errors.New("not enough finishers to trade")
)

// TradesRequired reports whether the finish order supports a trading phase.
func TradesRequired(finishOrder []string) bool {
	return len(finishOrder) >= 2
}

// StartTrading moves a freshly dealt round into the trading ritual. The
// finish order must be the previous round's, i.e. the current TurnOrder.
// Peasants give first; royals reciprocate.
func StartTrading(state *GameState) (*GameState, error) {
	if !state.Settings.TradingEnabled {
		return nil, ErrTradingDisabled
	}
	if state.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	order := state.TurnOrder
	if !TradesRequired(order) {
		return nil, ErrTooFewFinishers
	}

	s := state.Clone()
	winner, last := order[0], order[len(order)-1]
	runnerUp, secondLast := order[1], order[len(order)-2]

	s.Trading = &TradingState{
		Phase:           TradePeasantsGive,
		PeasantLegs:     buildLegs(TradeLeg{last, winner, 2}, TradeLeg{secondLast, runnerUp, 1}),
		RoyalLegs:       buildLegs(TradeLeg{winner, last, 2}, TradeLeg{runnerUp, secondLast, 1}),
		CompletedTrades: make(map[string]bool),
	}
	s.Status = StatusTrading
	s.CurrentSeat = ""
	s.LeaderSeat = ""
	return s, nil
}

// buildLegs drops degenerate legs where a seat would trade with itself.
func buildLegs(legs ...TradeLeg) []TradeLeg {
	out := make([]TradeLeg, 0, len(legs))
	for _, leg := range legs {
		if leg.From != leg.To {
			out = append(out, leg)
		}
	}
	return out
}

// CompleteTrade moves the given cards from one seat to another, recording the
// giver-receiver pair. When the current phase's legs are all recorded the
// machine advances to the royals' leg, and after that back to play with the
// previous winner leading.
func CompleteTrade(state *GameState, fromSeatID, toSeatID string, cards []Card) (*GameState, error) {
	if state.Status != StatusTrading || state.Trading == nil {
		return nil, ErrNotTrading
	}

	s := state.Clone()
	tr := s.Trading

	leg, err := tr.pendingLeg(fromSeatID, toSeatID)
	if err != nil {
		return nil, err
	}
	if len(cards) != leg.Count {
		return nil, fmt.Errorf("%w: owe %d", ErrWrongTradeSize, leg.Count)
	}

	giver := s.PlayerBySeat(fromSeatID)
	receiver := s.PlayerBySeat(toSeatID)
	if giver == nil || receiver == nil {
		return nil, ErrUnknownSeat
	}
	if !OwnsCards(giver.Hand, cards) {
		return nil, ErrNotYourCards
	}

	giver.Hand = RemoveCards(giver.Hand, cards)
	receiver.Hand = append(receiver.Hand, cards...)
	SortHand(receiver.Hand, s.Settings.TwosHigh)

	tr.CompletedTrades[tradeKey(fromSeatID, toSeatID)] = true

	if tr.phaseComplete() {
		if tr.Phase == TradePeasantsGive {
			tr.Phase = TradeRoyalsGive
		} else {
			// Both legs done: play begins with the previous winner.
			s.Trading = nil
			s.Status = StatusPlaying
			s.CurrentSeat = s.TurnOrder[0]
			s.LeaderSeat = s.CurrentSeat
		}
	}
	return s, nil
}

// PendingLegsFor returns the current phase's outstanding legs for a giver.
func (tr *TradingState) PendingLegsFor(fromSeatID string) []TradeLeg {
	var out []TradeLeg
	for _, leg := range tr.currentLegs() {
		if leg.From == fromSeatID && !tr.CompletedTrades[tradeKey(leg.From, leg.To)] {
			out = append(out, leg)
		}
	}
	return out
}

func (tr *TradingState) currentLegs() []TradeLeg {
	if tr.Phase == TradePeasantsGive {
		return tr.PeasantLegs
	}
	return tr.RoyalLegs
}

func (tr *TradingState) pendingLeg(fromSeatID, toSeatID string) (TradeLeg, error) {
	for _, leg := range tr.currentLegs() {
		if leg.From != fromSeatID || leg.To != toSeatID {
			continue
		}
		if tr.CompletedTrades[tradeKey(leg.From, leg.To)] {
			return TradeLeg{}, ErrTradeDone
		}
		return leg, nil
	}
	return TradeLeg{}, ErrNoSuchTrade
}

func (tr *TradingState) phaseComplete() bool {
	for _, leg := range tr.currentLegs() {
		if !tr.CompletedTrades[tradeKey(leg.From, leg.To)] {
			return false
		}
	}
	return true
}

func tradeKey(from, to string) string {
	return from + "-" + to
}
