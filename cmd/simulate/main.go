package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"revolution/internal/app"
	"revolution/internal/bot"
	"revolution/internal/domain"
	"revolution/internal/store"
)

// maxTransitions caps a single game so a stalled table fails loudly instead
// of spinning forever.
const maxTransitions = 20000

func main() {
	games := flag.Int("games", 10, "number of games to play")
	players := flag.Int("players", 4, "seats per table (4-6)")
	twosHigh := flag.Bool("twos-high", false, "rank twos above aces")
	trading := flag.Bool("trading", true, "enable the card-trading ritual")
	winScore := flag.Int("win-score", 50, "total score that ends the game")
	seed := flag.Int64("seed", 0, "rng seed (0 = time-based)")
	verbose := flag.Bool("v", false, "log every transition")
	flag.Parse()

	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Info().Int64("seed", *seed).Int("games", *games).Int("players", *players).Msg("starting simulation")

	settings := domain.Settings{
		PlayerCount:    *players,
		TwosHigh:       *twosHigh,
		TradingEnabled: *trading,
		WinScore:       *winScore,
	}

	wins := make(map[string]int)
	totalRounds := 0
	for i := 0; i < *games; i++ {
		standings, rounds, err := runGame(i, settings, rng)
		if err != nil {
			log.Fatal().Err(err).Int("game", i+1).Msg("simulation aborted")
		}
		wins[standings[0].DisplayName]++
		totalRounds += rounds
		log.Info().
			Int("game", i+1).
			Int("rounds", rounds).
			Str("winner", standings[0].DisplayName).
			Int("score", standings[0].TotalScore).
			Msg("game over")
	}

	log.Info().
		Float64("avg_rounds", float64(totalRounds)/float64(*games)).
		Msg("simulation done")
	for name, n := range wins {
		log.Info().Str("player", name).Int("wins", n).Msg("win count")
	}
}

// runGame plays one full bots-only game through the real service and store.
func runGame(index int, settings domain.Settings, rng *rand.Rand) ([]domain.Standing, int, error) {
	ctx := context.Background()
	svc := app.NewService(rng)
	db := store.NewMemory()

	code := fmt.Sprintf("SIM%04d", index)
	state := svc.NewGame(code, settings)

	agents := make(map[string]*bot.Agent, settings.PlayerCount)
	for i := 0; i < settings.PlayerCount; i++ {
		agent := bot.NewAgent(i)
		next, _, err := svc.AddPlayer(state, agent.ID, agent.Name)
		if err != nil {
			return nil, 0, fmt.Errorf("seating %s: %w", agent.Name, err)
		}
		state = next
		agents[state.Players[len(state.Players)-1].SeatID] = agent
	}

	state, _, err := svc.StartGame(state)
	if err != nil {
		return nil, 0, fmt.Errorf("starting game: %w", err)
	}

	for steps := 0; state.Status != domain.StatusGameOver; steps++ {
		if steps > maxTransitions {
			return nil, 0, fmt.Errorf("game %s exceeded %d transitions", code, maxTransitions)
		}

		next, err := step(svc, state, agents)
		if err != nil {
			return nil, 0, err
		}
		state = next
		if err := db.Save(ctx, state); err != nil {
			return nil, 0, err
		}
	}

	saved, err := db.Load(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	return domain.FinalStandings(saved), saved.CurrentRound, nil
}

// step advances the aggregate by exactly one bot action.
func step(svc *app.Service, state *domain.GameState, agents map[string]*bot.Agent) (*domain.GameState, error) {
	switch state.Status {
	case domain.StatusPlaying:
		return playTurn(svc, state, agents)
	case domain.StatusTrading:
		return playTrade(svc, state, agents)
	case domain.StatusRoundEnd:
		next, _, err := svc.StartNextRound(state)
		return next, err
	default:
		return nil, fmt.Errorf("unexpected status %s", state.Status)
	}
}

func playTurn(svc *app.Service, state *domain.GameState, agents map[string]*bot.Agent) (*domain.GameState, error) {
	seatID := state.CurrentSeat
	agent := agents[seatID]

	move, err := agent.Brain.CalculateMove(bot.ViewFor(state, seatID))
	if err != nil {
		return nil, fmt.Errorf("seat %s: %w", seatID, err)
	}

	if !move.Pass {
		next, _, err := svc.PlayCards(state, seatID, move.Cards)
		if err == nil {
			logTransition(state, seatID, move.Cards)
			return next, nil
		}
		log.Debug().Str("seat", seatID).Err(err).Msg("move rejected, passing")
	}

	if state.LastPlay == nil {
		// Leading seats cannot pass; shed the lowest card instead.
		p := state.PlayerBySeat(seatID)
		lowest := p.Hand[0]
		for _, c := range p.Hand[1:] {
			if domain.CardPower(c, state.Settings.TwosHigh) < domain.CardPower(lowest, state.Settings.TwosHigh) {
				lowest = c
			}
		}
		next, _, err := svc.PlayCards(state, seatID, []domain.Card{lowest})
		if err != nil {
			return nil, fmt.Errorf("seat %s cannot lead: %w", seatID, err)
		}
		return next, nil
	}
	next, _, err := svc.PassTurn(state, seatID)
	if err != nil {
		return nil, fmt.Errorf("seat %s pass: %w", seatID, err)
	}
	log.Debug().Str("seat", seatID).Msg("pass")
	return next, nil
}

func playTrade(svc *app.Service, state *domain.GameState, agents map[string]*bot.Agent) (*domain.GameState, error) {
	for _, p := range state.Players {
		legs := state.Trading.PendingLegsFor(p.SeatID)
		if len(legs) == 0 {
			continue
		}
		leg := legs[0]
		give := agents[p.SeatID].Brain.ContributeCards(p.Hand, leg.Count, state.Settings.TwosHigh)
		next, _, err := svc.SubmitTrade(state, leg.From, leg.To, give)
		if err != nil {
			return nil, fmt.Errorf("trade %s->%s: %w", leg.From, leg.To, err)
		}
		log.Debug().Str("from", leg.From).Str("to", leg.To).Int("count", leg.Count).Msg("trade")
		return next, nil
	}
	return nil, fmt.Errorf("trading stuck with no pending legs")
}

func logTransition(state *domain.GameState, seatID string, cards []domain.Card) {
	if log.Logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	log.Debug().Str("seat", seatID).Strs("cards", ids).Int("round", state.CurrentRound).Msg("play")
}
