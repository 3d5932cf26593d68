package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/app"
	"revolution/internal/bot"
	"revolution/internal/config"
	"revolution/internal/domain"
	"revolution/internal/ports"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy
// the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastLabel      string
	lastOpCode     int64
	lastData       []byte
	lastRecipients []runtime.Presence
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	md.lastRecipients = presences
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

type mockPresence struct {
	userID   string
	username string
}

func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return p.userID + "-session" }
func (p mockPresence) GetNodeId() string                 { return "node" }
func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return true }
func (p mockPresence) GetUsername() string               { return p.username }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

type mockRecorder struct {
	results []ports.GameResult
}

func (mr *mockRecorder) RecordResult(_ context.Context, result ports.GameResult) error {
	mr.results = append(mr.results, result)
	return nil
}

func testConfig() *config.GameConfig {
	cfg := config.Default()
	cfg.BotMinDelayMs = 0
	cfg.BotMaxDelayMs = 0
	cfg.BotAutoFillDelaySeconds = 2
	return cfg
}

func newLobbyState() *MatchState {
	svc := app.NewService(nil)
	return &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Game:      svc.NewGame("ROOM1", domain.Settings{PlayerCount: 4, WinScore: 50}),
		Bots:      make(map[string]*bot.Agent),
		Recorder:  &mockRecorder{},
		Cfg:       testConfig(),
	}
}

func joinHumans(t *testing.T, mh *matchHandler, state *MatchState, dispatcher *mockDispatcher, names ...string) *MatchState {
	t.Helper()
	presences := make([]runtime.Presence, 0, len(names))
	for _, name := range names {
		presences = append(presences, mockPresence{userID: name, username: name})
	}
	out := mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, presences)
	next, ok := out.(*MatchState)
	if !ok {
		t.Fatalf("MatchJoin returned %T", out)
	}
	return next
}

func TestMatchJoinSeatsHumans(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()

	state = joinHumans(t, mh, state, dispatcher, "alice", "bob")

	if len(state.Game.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(state.Game.Players))
	}
	if got := state.seatOf("alice"); got != "s1" {
		t.Errorf("alice seat = %q, want s1", got)
	}
	if state.OwnerID != "alice" {
		t.Errorf("owner = %q, want alice", state.OwnerID)
	}
	if dispatcher.labelUpdates == 0 || dispatcher.broadcastCount == 0 {
		t.Error("expected label update and broadcasts after join")
	}

	var label matchLabel
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if label.Game != "revolution" || label.Open != 2 || label.Status != "lobby" {
		t.Errorf("label = %+v", label)
	}
}

func TestMatchJoinAttemptRejections(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob", "carol", "dave")

	_, allowed, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, mockPresence{userID: "eve"}, nil)
	if allowed {
		t.Error("join allowed into a full human lobby")
	}

	// A seated person may always come back.
	_, allowed, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, mockPresence{userID: "bob"}, nil)
	if !allowed {
		t.Error("rejoin rejected")
	}
}

func TestStartGameFillsBotsAndDeals(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob")

	msg := mockMatchData{mockPresence: mockPresence{userID: "alice"}, opCode: OpStartGame}
	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{msg})
	state = out.(*MatchState)

	if state.Game.Status != domain.StatusPlaying {
		t.Fatalf("status = %s, want playing", state.Game.Status)
	}
	if len(state.Game.Players) != 4 {
		t.Fatalf("players = %d, want 4 after bot fill", len(state.Game.Players))
	}
	if len(state.Bots) != 2 {
		t.Fatalf("bots = %d, want 2", len(state.Bots))
	}
	for _, p := range state.Game.Players {
		if len(p.Hand) != 13 {
			t.Errorf("seat %s hand = %d, want 13", p.SeatID, len(p.Hand))
		}
	}
}

func TestStartGameRequiresOwner(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob")

	msg := mockMatchData{mockPresence: mockPresence{userID: "bob"}, opCode: OpStartGame}
	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{msg})
	state = out.(*MatchState)

	if state.Game.Status != domain.StatusLobby {
		t.Fatalf("non-owner started the game")
	}
	if dispatcher.lastOpCode != OpGameError {
		t.Errorf("expected an error message, got opcode %d", dispatcher.lastOpCode)
	}
}

// midRoundState builds a playing aggregate with known single-card follows.
func midRoundState(state *MatchState) {
	c := func(rank, suit int) domain.Card { return domain.Card{Rank: rank, Suit: suit} }
	game := &domain.GameState{
		GameID:       "g1",
		Code:         "ROOM1",
		Status:       domain.StatusPlaying,
		Settings:     domain.Settings{PlayerCount: 4, WinScore: 50},
		CurrentRound: 2,
		TurnOrder:    []string{"s1", "s2", "s3", "s4"},
		CurrentSeat:  "s1",
		LeaderSeat:   "s1",
	}
	hands := map[string][]domain.Card{
		"s1": {c(3, 0), c(9, 0)},
		"s2": {c(4, 0), c(10, 0)},
		"s3": {c(5, 0), c(domain.RankJack, 0)},
		"s4": {c(6, 0), c(domain.RankQueen, 0)},
	}
	for i, person := range []string{"alice", "bob", "carol", "dave"} {
		seatID := game.TurnOrder[i]
		game.Players = append(game.Players, &domain.PlayerState{
			SeatID:         seatID,
			PersonID:       person,
			DisplayName:    person,
			Hand:           hands[seatID],
			FinishPosition: -1,
		})
	}
	state.Game = game
	state.OwnerID = "alice"
}

func TestHandlePlayCards(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob", "carol", "dave")
	midRoundState(state)

	payload, _ := json.Marshal(playCardsRequest{Cards: []domain.Card{{Rank: 3, Suit: 0}}})
	msg := mockMatchData{mockPresence: mockPresence{userID: "alice"}, opCode: OpPlayCards, data: payload}
	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.MatchData{msg})
	state = out.(*MatchState)

	if state.Game.CurrentSeat != "s2" {
		t.Fatalf("current seat = %s, want s2", state.Game.CurrentSeat)
	}
	if got := len(state.Game.PlayerBySeat("s1").Hand); got != 1 {
		t.Errorf("s1 hand = %d, want 1", got)
	}

	// Out-of-turn play is refused and reported only to the sender.
	dispatcher.lastOpCode = 0
	payload, _ = json.Marshal(playCardsRequest{Cards: []domain.Card{{Rank: 5, Suit: 0}}})
	msg = mockMatchData{mockPresence: mockPresence{userID: "carol"}, opCode: OpPlayCards, data: payload}
	out = mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 4, state, []runtime.MatchData{msg})
	state = out.(*MatchState)
	if dispatcher.lastOpCode != OpGameError {
		t.Errorf("expected error opcode, got %d", dispatcher.lastOpCode)
	}
	if len(dispatcher.lastRecipients) != 1 {
		t.Errorf("error should target one presence, got %d", len(dispatcher.lastRecipients))
	}
}

func TestBotTakesOverAbandonedSeat(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob", "carol", "dave")
	midRoundState(state)

	out := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, []runtime.Presence{mockPresence{userID: "bob"}})
	state = out.(*MatchState)

	if _, ok := state.Bots["s2"]; !ok {
		t.Fatal("no bot installed on the abandoned seat")
	}
	if state.Game.PlayerBySeat("s2") == nil {
		t.Fatal("seat s2 vanished mid-game")
	}

	// The bot acts on the abandoned seat's turn.
	state.Game.CurrentSeat = "s2"
	state.Game.LeaderSeat = "s2"
	state.Game.LastPlay = nil

	// First tick arms the delay, second tick acts.
	for tick := int64(6); tick <= 7; tick++ {
		out = mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, nil)
		state = out.(*MatchState)
	}
	if state.Game.CurrentSeat == "s2" {
		t.Error("bot did not act on its turn")
	}
}

func TestLastHumanLeavingTerminates(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice")

	out := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, []runtime.Presence{mockPresence{userID: "alice"}})
	if out != nil {
		t.Fatalf("match kept alive with no humans: %T", out)
	}
}

func TestAutoFillLobbyAfterDelay(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice")

	// Tick 10 arms the timer; the fill fires once the delay elapses.
	for _, tick := range []int64{10, 11, 12} {
		out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, nil)
		state = out.(*MatchState)
	}

	if len(state.Game.Players) != 4 {
		t.Fatalf("players = %d, want 4 after auto-fill", len(state.Game.Players))
	}
	if len(state.Bots) != 3 {
		t.Fatalf("bots = %d, want 3", len(state.Bots))
	}
}

func TestGameOverRecordsResult(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state = joinHumans(t, mh, state, dispatcher, "alice", "bob", "carol", "dave")
	midRoundState(state)

	c := func(rank, suit int) domain.Card { return domain.Card{Rank: rank, Suit: suit} }
	for _, seat := range []string{"s1", "s2", "s3", "s4"} {
		state.Game.PlayerBySeat(seat).Hand = state.Game.PlayerBySeat(seat).Hand[:1]
	}
	state.Game.PlayerBySeat("s1").TotalScore = 49

	plays := []struct {
		person string
		card   domain.Card
	}{
		{"alice", c(3, 0)},
		{"bob", c(4, 0)},
		{"carol", c(5, 0)},
	}
	for tick, play := range plays {
		payload, _ := json.Marshal(playCardsRequest{Cards: []domain.Card{play.card}})
		msg := mockMatchData{mockPresence: mockPresence{userID: play.person}, opCode: OpPlayCards, data: payload}
		out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, int64(10+tick), state, []runtime.MatchData{msg})
		state = out.(*MatchState)
	}

	if state.Game.Status != domain.StatusGameOver {
		t.Fatalf("status = %s, want game over", state.Game.Status)
	}
	recorder := state.Recorder.(*mockRecorder)
	if len(recorder.results) != 1 {
		t.Fatalf("recorded results = %d, want 1", len(recorder.results))
	}
	if recorder.results[0].Standings[0].SeatID != "s1" {
		t.Errorf("winner = %s, want s1", recorder.results[0].Standings[0].SeatID)
	}
	if !state.Recorded {
		t.Error("result not marked recorded")
	}
}
