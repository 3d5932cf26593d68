package nakama

import (
	"context"
	"math/rand"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/bot"
	"revolution/internal/domain"
)

// processBots runs the per-tick bot logic: lobby auto-fill, trading
// contributions, in-game turns, and round advancement for ownerless tables.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	switch state.Game.Status {
	case domain.StatusLobby:
		mh.autoFillLobby(ctx, state, dispatcher, logger)
	case domain.StatusPlaying:
		mh.playBotTurn(ctx, state, dispatcher, logger)
	case domain.StatusTrading:
		mh.playBotTrades(ctx, state, dispatcher, logger)
	case domain.StatusRoundEnd:
		// With no human owner connected the table advances itself.
		if state.OwnerID == "" {
			next, events, err := state.App.StartNextRound(state.Game)
			if err != nil {
				logger.Error("processBots: advancing round: %v", err)
				return
			}
			state.Game = next
			mh.updateLabel(state, dispatcher, logger)
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		}
	}
}

// autoFillLobby seats bots after a lone human has waited out the fill delay.
func (mh *matchHandler) autoFillLobby(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.HumanCount() != 1 || len(state.Game.Players) >= state.Game.Settings.PlayerCount {
		state.ShortHandedSince = 0
		return
	}

	if state.ShortHandedSince == 0 {
		state.ShortHandedSince = state.Tick
		return
	}
	if state.Tick-state.ShortHandedSince < int64(state.Cfg.BotAutoFillDelaySeconds) {
		return
	}
	state.ShortHandedSince = 0

	mh.fillWithBots(state, logger)
	mh.updateLabel(state, dispatcher, logger)
	mh.sendSnapshots(state, dispatcher, logger)
}

// playBotTurn acts for the current seat when a bot drives it, after a
// simulated think delay.
func (mh *matchHandler) playBotTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	seatID := state.Game.CurrentSeat
	agent, ok := state.Bots[seatID]
	if !ok {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		min, max := state.Cfg.BotMinDelayMs/1000, state.Cfg.BotMaxDelayMs/1000
		if max < min {
			max = min
		}
		state.BotWaitUntil = state.Tick + int64(min+rand.Intn(max-min+1))
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	move, err := agent.Brain.CalculateMove(bot.ViewFor(state.Game, seatID))
	if err != nil {
		logger.Error("playBotTurn: seat %s: %v", seatID, err)
		move = bot.Move{Pass: true}
	}

	if !move.Pass {
		next, events, err := state.App.PlayCards(state.Game, seatID, move.Cards)
		if err == nil {
			state.Game = next
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
			mh.afterTransition(ctx, state, dispatcher, logger)
			return
		}
		// A rejected bot move falls through to a pass so the table never
		// stalls.
		logger.Warn("playBotTurn: seat %s move rejected: %v", seatID, err)
	}

	if state.Game.LastPlay == nil {
		// Leading seats cannot pass; shed the lowest card instead.
		p := state.Game.PlayerBySeat(seatID)
		if p == nil || len(p.Hand) == 0 {
			return
		}
		lowest := p.Hand[0]
		for _, c := range p.Hand[1:] {
			if domain.CardPower(c, state.Game.Settings.TwosHigh) < domain.CardPower(lowest, state.Game.Settings.TwosHigh) {
				lowest = c
			}
		}
		next, events, err := state.App.PlayCards(state.Game, seatID, []domain.Card{lowest})
		if err != nil {
			logger.Error("playBotTurn: seat %s cannot lead: %v", seatID, err)
			return
		}
		state.Game = next
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		mh.afterTransition(ctx, state, dispatcher, logger)
		return
	}

	next, events, err := state.App.PassTurn(state.Game, seatID)
	if err != nil {
		logger.Error("playBotTurn: seat %s cannot pass: %v", seatID, err)
		return
	}
	state.Game = next
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// playBotTrades settles one pending trade leg per tick for bot-driven seats.
func (mh *matchHandler) playBotTrades(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	trading := state.Game.Trading
	if trading == nil {
		return
	}

	for seatID, agent := range state.Bots {
		legs := trading.PendingLegsFor(seatID)
		if len(legs) == 0 {
			continue
		}
		leg := legs[0]

		p := state.Game.PlayerBySeat(seatID)
		if p == nil {
			continue
		}
		give := agent.Brain.ContributeCards(p.Hand, leg.Count, state.Game.Settings.TwosHigh)

		next, events, err := state.App.SubmitTrade(state.Game, leg.From, leg.To, give)
		if err != nil {
			logger.Error("playBotTrades: seat %s: %v", seatID, err)
			continue
		}
		state.Game = next
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		mh.updateLabel(state, dispatcher, logger)
		return
	}
}
