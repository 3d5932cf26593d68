package domain

// Status is the lifecycle stage of a room's game.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusTrading  Status = "trading"
	StatusRoundEnd Status = "round_end"
	StatusGameOver Status = "game_over"
)

// RankTitle is the cosmetic title assigned by round finish position.
type RankTitle string

const (
	TitleKing    RankTitle = "KING"
	TitleQueen   RankTitle = "QUEEN"
	TitleNoble   RankTitle = "NOBLE"
	TitlePeasant RankTitle = "PEASANT"
)

// Settings is the configuration surface fixed for the life of one game.
type Settings struct {
	PlayerCount    int  `json:"playerCount"` // 4..6
	TwosHigh       bool `json:"twosHigh"`
	TradingEnabled bool `json:"tradingEnabled"`
	WinScore       int  `json:"winScore"`
}

// PlayerState holds one seat's state. The hand is exclusively owned by the
// seat; only state-machine transitions touch it.
type PlayerState struct {
	SeatID         string    `json:"seatId"`
	PersonID       string    `json:"personId"`
	DisplayName    string    `json:"displayName"`
	Hand           []Card    `json:"hand"`
	TotalScore     int       `json:"totalScore"`
	CurrentRank    RankTitle `json:"currentRank,omitempty"`
	IsFinished     bool      `json:"isFinished"`
	FinishPosition int       `json:"finishPosition"`
}

// TradePhase identifies which leg of the post-round trade is in progress.
type TradePhase string

const (
	TradePeasantsGive TradePhase = "peasants_give"
	TradeRoyalsGive   TradePhase = "royals_give"
)

// TradeLeg is one required one-directional card transfer.
type TradeLeg struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// TradingState exists only between rounds, while the card-trading ritual is
// in progress; it is discarded once both legs complete.
type TradingState struct {
	Phase           TradePhase      `json:"phase"`
	PeasantLegs     []TradeLeg      `json:"peasantLegs"`
	RoyalLegs       []TradeLeg      `json:"royalLegs"`
	CompletedTrades map[string]bool `json:"completedTrades"` // "giver-receiver"
}

// GameState is the root aggregate for one room. Transitions never mutate the
// input state; they return a fresh aggregate so callers can diff by value.
type GameState struct {
	GameID       string         `json:"gameId"`
	Code         string         `json:"code"`
	Status       Status         `json:"status"`
	Settings     Settings       `json:"settings"`
	CurrentRound int            `json:"currentRound"`
	Players      []*PlayerState `json:"players"`

	// TurnOrder fixes this round's rotation: seating order in round one,
	// the previous round's finish order afterwards.
	TurnOrder   []string `json:"turnOrder"`
	CurrentSeat string   `json:"currentSeat,omitempty"`
	// LeaderSeat is the seat that opened the current trick. When a trick
	// passes out, the lead returns here (or past it if finished).
	LeaderSeat  string   `json:"leaderSeat,omitempty"`
	LastPlay    *Play    `json:"lastPlay,omitempty"`
	PassCount   int      `json:"passCount"`
	FinishOrder []string `json:"finishOrder"`

	// Burned holds the undealt remainder of a round-one deal so the 52-card
	// partition invariant stays checkable.
	Burned []Card `json:"burned,omitempty"`
	// AutoSkipped records seats skipped for lacking enough cards to follow,
	// since the last accepted play.
	AutoSkipped []string `json:"autoSkipped,omitempty"`

	Trading *TradingState `json:"trading,omitempty"`
}

// Clone returns a deep copy of the aggregate.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]*PlayerState, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.Hand = append([]Card(nil), p.Hand...)
		out.Players[i] = &cp
	}
	out.TurnOrder = append([]string(nil), s.TurnOrder...)
	out.FinishOrder = append([]string(nil), s.FinishOrder...)
	out.Burned = append([]Card(nil), s.Burned...)
	out.AutoSkipped = append([]string(nil), s.AutoSkipped...)
	if s.LastPlay != nil {
		lp := *s.LastPlay
		lp.Cards = append([]Card(nil), s.LastPlay.Cards...)
		out.LastPlay = &lp
	}
	if s.Trading != nil {
		tr := *s.Trading
		tr.PeasantLegs = append([]TradeLeg(nil), s.Trading.PeasantLegs...)
		tr.RoyalLegs = append([]TradeLeg(nil), s.Trading.RoyalLegs...)
		tr.CompletedTrades = make(map[string]bool, len(s.Trading.CompletedTrades))
		for k, v := range s.Trading.CompletedTrades {
			tr.CompletedTrades[k] = v
		}
		out.Trading = &tr
	}
	return &out
}

// PlayerBySeat returns the seat's player state, or nil.
func (s *GameState) PlayerBySeat(seatID string) *PlayerState {
	for _, p := range s.Players {
		if p.SeatID == seatID {
			return p
		}
	}
	return nil
}

// ActiveSeatCount returns the number of seats still holding cards.
func (s *GameState) ActiveSeatCount() int {
	n := 0
	for _, p := range s.Players {
		if !p.IsFinished {
			n++
		}
	}
	return n
}

// turnIndex returns the seat's position in this round's rotation, or -1.
func (s *GameState) turnIndex(seatID string) int {
	for i, id := range s.TurnOrder {
		if id == seatID {
			return i
		}
	}
	return -1
}

// nextActiveAfter walks the rotation starting after the given seat and
// returns the first non-finished seat, or "" if none exists.
func (s *GameState) nextActiveAfter(seatID string) string {
	start := s.turnIndex(seatID)
	if start < 0 {
		return ""
	}
	for step := 1; step <= len(s.TurnOrder); step++ {
		candidate := s.TurnOrder[(start+step)%len(s.TurnOrder)]
		p := s.PlayerBySeat(candidate)
		if p != nil && !p.IsFinished {
			return candidate
		}
	}
	return ""
}
