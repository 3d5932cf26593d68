package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"revolution/internal/domain"
)

const (
	MinPlayers      = 4
	MaxPlayers      = 6
	DefaultWinScore = 50
)

var (
	ErrNotInLobby        = errors.New("game not in lobby")
	ErrRoundNotOver      = errors.New("round not over")
	ErrGameFull          = errors.New("all seats taken")
	ErrAlreadySeated     = errors.New("person already seated")
	ErrTooFewPlayers     = errors.New("not enough players to start")
	ErrNotYourTurn       = errors.New("not this seat's turn")
	ErrMustIncludeOpener = errors.New("first play must include the opening card")
)

// Service contains the game's use-cases. Each intent takes the loaded
// aggregate and returns the replacement state plus the events to dispatch;
// the caller owns persistence and delivery.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// NewGame creates an empty lobby for the given room code.
func (s *Service) NewGame(code string, settings domain.Settings) *domain.GameState {
	if settings.PlayerCount < MinPlayers {
		settings.PlayerCount = MinPlayers
	}
	if settings.PlayerCount > MaxPlayers {
		settings.PlayerCount = MaxPlayers
	}
	if settings.WinScore <= 0 {
		settings.WinScore = DefaultWinScore
	}
	return &domain.GameState{
		GameID:   uuid.NewString(),
		Code:     code,
		Status:   domain.StatusLobby,
		Settings: settings,
	}
}

// AddPlayer seats a person in the lobby, assigning the lowest free seat.
func (s *Service) AddPlayer(state *domain.GameState, personID, displayName string) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusLobby {
		return nil, nil, ErrNotInLobby
	}
	if len(state.Players) >= state.Settings.PlayerCount {
		return nil, nil, ErrGameFull
	}
	for _, p := range state.Players {
		if p.PersonID == personID {
			return nil, nil, ErrAlreadySeated
		}
	}

	next := state.Clone()
	seatID := freeSeatID(next)
	next.Players = append(next.Players, &domain.PlayerState{
		SeatID:         seatID,
		PersonID:       personID,
		DisplayName:    displayName,
		FinishPosition: -1,
	})

	ev := Event{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			SeatID:      seatID,
			PersonID:    personID,
			DisplayName: displayName,
		},
	}
	return next, []Event{ev}, nil
}

// RemovePlayer vacates a person's seat. Only lobby seats can be vacated;
// once play starts the seat persists and the transport swaps in a bot.
func (s *Service) RemovePlayer(state *domain.GameState, personID string) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusLobby {
		return nil, nil, ErrNotInLobby
	}
	next := state.Clone()
	for i, p := range next.Players {
		if p.PersonID != personID {
			continue
		}
		next.Players = append(next.Players[:i], next.Players[i+1:]...)
		ev := Event{
			Kind:    EventPlayerLeft,
			Payload: PlayerLeftPayload{SeatID: p.SeatID, PersonID: personID},
		}
		return next, []Event{ev}, nil
	}
	return nil, nil, domain.ErrUnknownSeat
}

// StartGame deals round one. Every seat must be filled first.
func (s *Service) StartGame(state *domain.GameState) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusLobby {
		return nil, nil, ErrNotInLobby
	}
	if len(state.Players) < state.Settings.PlayerCount {
		return nil, nil, ErrTooFewPlayers
	}

	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	next, err := domain.InitializeRound(state, deck)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{GameID: next.GameID, Settings: next.Settings},
	}}
	events = append(events, roundEvents(next)...)
	return next, events, nil
}

// StartNextRound deals the following round and, when the settings call for
// it, opens the card-trading ritual before play resumes.
func (s *Service) StartNextRound(state *domain.GameState) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusRoundEnd {
		return nil, nil, ErrRoundNotOver
	}

	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	next, err := domain.InitializeRound(state, deck)
	if err != nil {
		return nil, nil, err
	}
	events := roundEvents(next)

	if next.Settings.TradingEnabled && domain.TradesRequired(next.TurnOrder) {
		next, err = domain.StartTrading(next)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, Event{
			Kind: EventTradingStarted,
			Payload: TradingStartedPayload{
				Phase:       next.Trading.Phase,
				PeasantLegs: next.Trading.PeasantLegs,
				RoyalLegs:   next.Trading.RoyalLegs,
			},
		})
	}
	return next, events, nil
}

// PlayCards validates and applies one seat's play.
func (s *Service) PlayCards(state *domain.GameState, seatID string, cards []domain.Card) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusPlaying {
		return nil, nil, domain.ErrNotPlaying
	}
	if state.CurrentSeat != seatID {
		return nil, nil, ErrNotYourTurn
	}
	p := state.PlayerBySeat(seatID)
	if p == nil {
		return nil, nil, domain.ErrUnknownSeat
	}

	// The very first play of round one must include the opening card. The
	// condition only holds before that card has left the opener's hand.
	if state.CurrentRound == 1 && state.LastPlay == nil &&
		domain.ContainsCard(p.Hand, domain.OpeningCard) &&
		!domain.ContainsCard(cards, domain.OpeningCard) {
		return nil, nil, fmt.Errorf("%w (%s)", ErrMustIncludeOpener, domain.OpeningCard.ID())
	}

	play, err := domain.ValidatePlay(cards, state.LastPlay, state.Settings.TwosHigh)
	if err != nil {
		return nil, nil, err
	}

	next, err := domain.ApplyPlay(state, seatID, cards)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			SeatID:      seatID,
			Cards:       play.Cards,
			PlayType:    play.Type.String(),
			NextSeat:    next.CurrentSeat,
			AutoSkipped: next.AutoSkipped,
		},
	}}

	if np := next.PlayerBySeat(seatID); np.IsFinished {
		events = append(events, Event{
			Kind:    EventPlayerFinished,
			Payload: PlayerFinishedPayload{SeatID: seatID, Position: np.FinishPosition},
		})
	}
	// A cleared table mid-play means every other seat was auto-skipped and
	// the actor leads a fresh trick.
	if next.Status == domain.StatusPlaying && next.LastPlay == nil {
		events = append(events, Event{
			Kind:    EventTrickWon,
			Payload: TrickWonPayload{LeaderSeat: next.CurrentSeat},
		})
	}
	events = append(events, endEvents(next)...)
	return next, events, nil
}

// PassTurn applies one seat's pass.
func (s *Service) PassTurn(state *domain.GameState, seatID string) (*domain.GameState, []Event, error) {
	if state.Status != domain.StatusPlaying {
		return nil, nil, domain.ErrNotPlaying
	}
	if state.CurrentSeat != seatID {
		return nil, nil, ErrNotYourTurn
	}

	next, err := domain.ApplyPass(state, seatID)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventTurnPassed,
		Payload: TurnPassedPayload{
			SeatID:    seatID,
			NextSeat:  next.CurrentSeat,
			PassCount: next.PassCount,
		},
	}}
	if next.LastPlay == nil {
		events = append(events, Event{
			Kind:    EventTrickWon,
			Payload: TrickWonPayload{LeaderSeat: next.CurrentSeat},
		})
	}
	return next, events, nil
}

// SubmitTrade applies one leg of the trading ritual.
func (s *Service) SubmitTrade(state *domain.GameState, fromSeatID, toSeatID string, cards []domain.Card) (*domain.GameState, []Event, error) {
	next, err := domain.CompleteTrade(state, fromSeatID, toSeatID, cards)
	if err != nil {
		return nil, nil, err
	}

	payload := TradeCompletedPayload{
		FromSeat: fromSeatID,
		ToSeat:   toSeatID,
		Count:    len(cards),
	}
	if next.Trading != nil {
		payload.Phase = next.Trading.Phase
	} else {
		payload.Resumed = true
		payload.LeaderSeat = next.CurrentSeat
	}

	events := []Event{{Kind: EventTradeCompleted, Payload: payload}}
	// The receiver alone learns which cards arrived.
	if receiver := next.PlayerBySeat(toSeatID); receiver != nil && receiver.PersonID != "" {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{SeatID: toSeatID, Hand: receiver.Hand},
			Recipients: []string{receiver.PersonID},
		})
	}
	return next, events, nil
}

// roundEvents builds the broadcast and per-seat deliveries for a fresh deal.
func roundEvents(state *domain.GameState) []Event {
	sizes := make(map[string]int, len(state.Players))
	for _, p := range state.Players {
		sizes[p.SeatID] = len(p.Hand)
	}
	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:      state.CurrentRound,
			TurnOrder:  state.TurnOrder,
			LeaderSeat: state.LeaderSeat,
			HandSizes:  sizes,
		},
	}}
	for _, p := range state.Players {
		if p.PersonID == "" {
			continue
		}
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{SeatID: p.SeatID, Hand: p.Hand},
			Recipients: []string{p.PersonID},
		})
	}
	return events
}

// endEvents emits the round summary, and the final standings when the game
// is over.
func endEvents(state *domain.GameState) []Event {
	if state.Status != domain.StatusRoundEnd && state.Status != domain.StatusGameOver {
		return nil
	}

	scores := make(map[string]int, len(state.Players))
	titles := make(map[string]domain.RankTitle, len(state.Players))
	for _, p := range state.Players {
		scores[p.SeatID] = p.TotalScore
		titles[p.SeatID] = p.CurrentRank
	}
	events := []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:       state.CurrentRound,
			FinishOrder: state.FinishOrder,
			Scores:      scores,
			Titles:      titles,
		},
	}}
	if state.Status == domain.StatusGameOver {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Standings: domain.FinalStandings(state)},
		})
	}
	return events
}

// freeSeatID returns the lowest unoccupied seat label.
func freeSeatID(state *domain.GameState) string {
	for n := 1; n <= state.Settings.PlayerCount; n++ {
		id := fmt.Sprintf("s%d", n)
		if state.PlayerBySeat(id) == nil {
			return id
		}
	}
	return fmt.Sprintf("s%d", len(state.Players)+1)
}
