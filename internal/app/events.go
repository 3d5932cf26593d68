package app

import "revolution/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventRoundStarted   EventKind = "round_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventCardPlayed     EventKind = "card_played"
	EventTurnPassed     EventKind = "turn_passed"
	EventTrickWon       EventKind = "trick_won"
	EventPlayerFinished EventKind = "player_finished"
	EventTradingStarted EventKind = "trading_started"
	EventTradeCompleted EventKind = "trade_completed"
	EventRoundEnded     EventKind = "round_ended"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a use-case outcome with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // person IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	SeatID      string `json:"seatId"`
	PersonID    string `json:"personId"`
	DisplayName string `json:"displayName"`
}

type PlayerLeftPayload struct {
	SeatID   string `json:"seatId"`
	PersonID string `json:"personId"`
}

type GameStartedPayload struct {
	GameID   string          `json:"gameId"`
	Settings domain.Settings `json:"settings"`
}

type RoundStartedPayload struct {
	Round      int            `json:"round"`
	TurnOrder  []string       `json:"turnOrder"`
	LeaderSeat string         `json:"leaderSeat"`
	HandSizes  map[string]int `json:"handSizes"`
}

// HandDealtPayload is delivered only to the seat's own person.
type HandDealtPayload struct {
	SeatID string        `json:"seatId"`
	Hand   []domain.Card `json:"hand"`
}

type CardPlayedPayload struct {
	SeatID      string        `json:"seatId"`
	Cards       []domain.Card `json:"cards"`
	PlayType    string        `json:"playType"`
	NextSeat    string        `json:"nextSeat,omitempty"`
	AutoSkipped []string      `json:"autoSkipped,omitempty"`
}

type TurnPassedPayload struct {
	SeatID    string `json:"seatId"`
	NextSeat  string `json:"nextSeat,omitempty"`
	PassCount int    `json:"passCount"`
}

// TrickWonPayload announces the table clearing and who leads the fresh trick.
type TrickWonPayload struct {
	LeaderSeat string `json:"leaderSeat"`
}

type PlayerFinishedPayload struct {
	SeatID   string `json:"seatId"`
	Position int    `json:"position"`
}

type TradingStartedPayload struct {
	Phase       domain.TradePhase `json:"phase"`
	PeasantLegs []domain.TradeLeg `json:"peasantLegs"`
	RoyalLegs   []domain.TradeLeg `json:"royalLegs"`
}

type TradeCompletedPayload struct {
	FromSeat string            `json:"fromSeat"`
	ToSeat   string            `json:"toSeat"`
	Count    int               `json:"count"`
	Phase    domain.TradePhase `json:"phase,omitempty"`
	// Resumed is set on the trade that completes the ritual; LeaderSeat then
	// names the previous winner who opens play.
	Resumed    bool   `json:"resumed,omitempty"`
	LeaderSeat string `json:"leaderSeat,omitempty"`
}

type RoundEndedPayload struct {
	Round       int                         `json:"round"`
	FinishOrder []string                    `json:"finishOrder"`
	Scores      map[string]int              `json:"scores"`
	Titles      map[string]domain.RankTitle `json:"titles"`
}

type GameEndedPayload struct {
	Standings []domain.Standing `json:"standings"`
}
