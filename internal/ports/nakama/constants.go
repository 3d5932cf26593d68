package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// joinable room.
	RpcQuickMatch = "quick_match"

	// MatchName is the authoritative match handler name registered with
	// Nakama.
	MatchName = "revolution_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlayCards      int64 = 2
	OpPassTurn       int64 = 3
	OpSubmitTrade    int64 = 4
	OpStartNextRound int64 = 5

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpRoundStarted   int64 = 104
	OpHandDealt      int64 = 105 // send privately
	OpCardPlayed     int64 = 106
	OpTurnPassed     int64 = 107
	OpTrickWon       int64 = 108
	OpPlayerFinished int64 = 109
	OpTradingStarted int64 = 110
	OpTradeCompleted int64 = 111
	OpRoundEnded     int64 = 112
	OpGameEnded      int64 = 113

	// Server -> Client state sync and errors
	OpSnapshot  int64 = 120
	OpGameError int64 = 400
)
