package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/app"
	"revolution/internal/bot"
	"revolution/internal/config"
	"revolution/internal/domain"
	"revolution/internal/ports"
)

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The game aggregate itself lives in Game; everything else is
// transport bookkeeping.
type MatchState struct {
	Tick      int64
	Presences map[string]runtime.Presence // person ID -> presence
	App       *app.Service
	Game      *domain.GameState
	OwnerID   string                // person ID allowed to start/advance
	Bots      map[string]*bot.Agent // seat ID -> agent for bot-driven seats
	Recorder  ports.Recorder
	Cfg       *config.GameConfig

	// Bot pacing, in ticks (the match runs at one tick per second).
	BotWaitUntil     int64
	ShortHandedSince int64
	Recorded         bool
}

// HumanCount returns the number of seats still driven by a connected person.
func (ms *MatchState) HumanCount() int {
	n := 0
	for _, p := range ms.Game.Players {
		if _, ok := ms.Presences[p.PersonID]; ok {
			n++
		}
	}
	return n
}

// seatOf returns the seat occupied by the given person, or "".
func (ms *MatchState) seatOf(personID string) string {
	for _, p := range ms.Game.Players {
		if p.PersonID == personID {
			return p.SeatID
		}
	}
	return ""
}

type matchLabel struct {
	Game   string `json:"game"`
	Open   int    `json:"open"`
	Status string `json:"status"`
}

type playCardsRequest struct {
	Cards []domain.Card `json:"cards"`
}

type submitTradeRequest struct {
	ToSeat string        `json:"toSeat"`
	Cards  []domain.Card `json:"cards"`
}

type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := *config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if err := cfg.ApplyEnv(env); err != nil {
			logger.Warn("MatchInit: bad environment override: %v", err)
		}
	}

	code, _ := params["code"].(string)
	if code == "" {
		code, _ = ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	}

	settings := domain.Settings{
		PlayerCount:    cfg.DefaultPlayerCount,
		TwosHigh:       cfg.TwosHigh,
		TradingEnabled: cfg.TradingEnabled,
		WinScore:       cfg.WinScore,
	}
	if n, ok := params["player_count"].(float64); ok {
		settings.PlayerCount = int(n)
	}

	svc := app.NewService(nil)
	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Game:      svc.NewGame(code, settings),
		Bots:      make(map[string]*bot.Agent),
		Recorder:  NewResultRecorder(nk),
		Cfg:       &cfg,
	}

	tickRate := 1
	return state, tickRate, makeLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reclaiming an abandoned seat is always allowed.
	if seat := matchState.seatOf(presence.GetUserId()); seat != "" {
		return state, true, ""
	}
	if matchState.Game.Status != domain.StatusLobby {
		return state, false, "game in progress"
	}
	if len(matchState.Game.Players) >= matchState.Game.Settings.PlayerCount && !matchState.hasBotSeat() {
		return state, false, "match full"
	}
	return state, true, ""
}

// hasBotSeat reports whether a lobby seat is held by a pure bot that a
// joining human could displace.
func (ms *MatchState) hasBotSeat() bool {
	for _, p := range ms.Game.Players {
		if bot.IsBot(p.PersonID) {
			return true
		}
	}
	return false
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		personID := p.GetUserId()
		matchState.Presences[personID] = p

		if seatID := matchState.seatOf(personID); seatID != "" {
			// Returning person takes their seat back from the stand-in bot.
			delete(matchState.Bots, seatID)
			logger.Info("MatchJoin: %s reclaimed seat %s", personID, seatID)
			continue
		}

		// Displace a lobby bot when the table is otherwise full.
		if len(matchState.Game.Players) >= matchState.Game.Settings.PlayerCount {
			if !matchState.displaceBot(logger) {
				logger.Warn("MatchJoin: %s joined but no seat was available", personID)
				continue
			}
		}

		next, events, err := matchState.App.AddPlayer(matchState.Game, personID, p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: could not seat %s: %v", personID, err)
			continue
		}
		matchState.Game = next
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	// The owner is always a connected human.
	if _, connected := matchState.Presences[matchState.OwnerID]; !connected || matchState.OwnerID == "" {
		matchState.OwnerID = firstConnectedHuman(matchState)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendSnapshots(matchState, dispatcher, logger)
	return matchState
}

// displaceBot removes one pure-bot lobby seat to make room for a human.
func (ms *MatchState) displaceBot(logger runtime.Logger) bool {
	for _, p := range ms.Game.Players {
		if !bot.IsBot(p.PersonID) {
			continue
		}
		next, _, err := ms.App.RemovePlayer(ms.Game, p.PersonID)
		if err != nil {
			logger.Warn("displaceBot: %v", err)
			return false
		}
		delete(ms.Bots, p.SeatID)
		ms.Game = next
		return true
	}
	return false
}

func firstConnectedHuman(ms *MatchState) string {
	for _, p := range ms.Game.Players {
		if _, ok := ms.Presences[p.PersonID]; ok && !bot.IsBot(p.PersonID) {
			return p.PersonID
		}
	}
	return ""
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		personID := p.GetUserId()
		delete(matchState.Presences, personID)

		seatID := matchState.seatOf(personID)
		if seatID == "" {
			continue
		}

		if matchState.Game.Status == domain.StatusLobby {
			next, events, err := matchState.App.RemovePlayer(matchState.Game, personID)
			if err != nil {
				logger.Warn("MatchLeave: could not vacate %s: %v", seatID, err)
				continue
			}
			matchState.Game = next
			mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
			continue
		}

		// Mid-game the seat persists; a bot plays it out.
		matchState.Bots[seatID] = bot.NewAgent(len(matchState.Bots))
		logger.Info("MatchLeave: bot takes over seat %s for %s", seatID, personID)
	}

	if matchState.HumanCount() == 0 {
		logger.Info("MatchLeave: terminating match with no humans")
		return nil
	}

	if _, connected := matchState.Presences[matchState.OwnerID]; !connected {
		matchState.OwnerID = firstConnectedHuman(matchState)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitTrade:
			mh.handleSubmitTrade(ctx, matchState, dispatcher, logger, msg)
		case OpStartNextRound:
			mh.handleStartNextRound(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode %d", msg.GetOpCode())
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.OwnerID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can start the game")
		return
	}

	if state.Game.Status == domain.StatusGameOver {
		mh.resetForRematch(state, logger)
	}
	if state.Game.Status != domain.StatusLobby {
		mh.sendError(state, dispatcher, logger, senderID, 409, app.ErrNotInLobby.Error())
		return
	}

	if state.HumanCount() == 0 {
		return
	}
	mh.fillWithBots(state, logger)

	next, events, err := state.App.StartGame(state.Game)
	if err != nil {
		logger.Warn("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next
	state.Recorded = false

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	logger.Info("StartGame: round one dealt for %d seats", len(next.Players))
}

// resetForRematch rebuilds a lobby with the same seat assignments after a
// finished game.
func (mh *matchHandler) resetForRematch(state *MatchState, logger runtime.Logger) {
	old := state.Game
	fresh := state.App.NewGame(old.Code, old.Settings)
	for _, p := range old.Players {
		next, _, err := state.App.AddPlayer(fresh, p.PersonID, p.DisplayName)
		if err != nil {
			logger.Warn("resetForRematch: could not reseat %s: %v", p.PersonID, err)
			continue
		}
		fresh = next
	}
	state.Game = fresh
	logger.Info("resetForRematch: lobby rebuilt for room %s", old.Code)
}

// fillWithBots takes every remaining lobby seat with a fresh bot agent.
func (mh *matchHandler) fillWithBots(state *MatchState, logger runtime.Logger) {
	for i := 0; len(state.Game.Players) < state.Game.Settings.PlayerCount; i++ {
		agent := bot.NewAgent(len(state.Bots) + i)
		next, _, err := state.App.AddPlayer(state.Game, agent.ID, agent.Name)
		if err != nil {
			logger.Error("fillWithBots: %v", err)
			return
		}
		state.Game = next
		seatID := state.seatOf(agent.ID)
		state.Bots[seatID] = agent
		logger.Info("fillWithBots: %s seated at %s", agent.Name, seatID)
	}
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID := state.seatOf(senderID)
	if seatID == "" {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated")
		return
	}

	var request playCardsRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed play request")
		return
	}

	next, events, err := state.App.PlayCards(state.Game, seatID, request.Cards)
	if err != nil {
		logger.Warn("handlePlayCards: seat %s: %v", seatID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.afterTransition(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID := state.seatOf(senderID)
	if seatID == "" {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated")
		return
	}

	next, events, err := state.App.PassTurn(state.Game, seatID)
	if err != nil {
		logger.Warn("handlePassTurn: seat %s: %v", seatID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleSubmitTrade(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID := state.seatOf(senderID)
	if seatID == "" {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated")
		return
	}

	var request submitTradeRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed trade request")
		return
	}

	next, events, err := state.App.SubmitTrade(state.Game, seatID, request.ToSeat, request.Cards)
	if err != nil {
		logger.Warn("handleSubmitTrade: seat %s: %v", seatID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartNextRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.OwnerID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can advance the round")
		return
	}

	next, events, err := state.App.StartNextRound(state.Game)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next
	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// afterTransition handles the bookkeeping that follows a state change: label
// refresh and, once per game, exporting the final result.
func (mh *matchHandler) afterTransition(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	switch state.Game.Status {
	case domain.StatusRoundEnd:
		mh.updateLabel(state, dispatcher, logger)
	case domain.StatusGameOver:
		mh.updateLabel(state, dispatcher, logger)
		if !state.Recorded && state.Recorder != nil {
			result := ports.GameResult{
				GameID:    state.Game.GameID,
				Code:      state.Game.Code,
				Rounds:    state.Game.CurrentRound,
				Standings: domain.FinalStandings(state.Game),
			}
			if err := state.Recorder.RecordResult(ctx, result); err != nil {
				logger.Error("afterTransition: recording result: %v", err)
			}
			state.Recorded = true
		}
	}
}

// dispatchEvents converts app events to opcodes and delivers them, honoring
// recipient targeting.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := opCodeFor(ev.Kind)
		if !ok {
			logger.Warn("dispatchEvents: unknown event kind %q", ev.Kind)
			continue
		}

		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatchEvents: marshal %s: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, personID := range ev.Recipients {
				if p, ok := state.Presences[personID]; ok {
					recipients = append(recipients, p)
				}
			}
			// Targeted events for disconnected recipients (bots, absent
			// humans) must not leak to the room.
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("dispatchEvents: broadcast %s: %v", ev.Kind, err)
		}
	}
}

func opCodeFor(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventPlayerJoined:
		return OpPlayerJoined, true
	case app.EventPlayerLeft:
		return OpPlayerLeft, true
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventRoundStarted:
		return OpRoundStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventCardPlayed:
		return OpCardPlayed, true
	case app.EventTurnPassed:
		return OpTurnPassed, true
	case app.EventTrickWon:
		return OpTrickWon, true
	case app.EventPlayerFinished:
		return OpPlayerFinished, true
	case app.EventTradingStarted:
		return OpTradingStarted, true
	case app.EventTradeCompleted:
		return OpTradeCompleted, true
	case app.EventRoundEnded:
		return OpRoundEnded, true
	case app.EventGameEnded:
		return OpGameEnded, true
	default:
		return 0, false
	}
}

// sendError delivers an error payload to a single person.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, personID string, code int, message string) {
	presence, ok := state.Presences[personID]
	if !ok {
		return
	}
	data, err := json.Marshal(errorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func makeLabel(state *MatchState) string {
	open := state.Game.Settings.PlayerCount - len(state.Game.Players)
	if state.Game.Status != domain.StatusLobby {
		open = 0
	}
	label := matchLabel{
		Game:   "revolution",
		Open:   open,
		Status: string(state.Game.Status),
	}
	data, _ := json.Marshal(label)
	return string(data)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(makeLabel(state)); err != nil {
		logger.Error("updateLabel: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
