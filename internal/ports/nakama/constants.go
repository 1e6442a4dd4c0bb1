package nakama

const (
	// RpcQuickRoom is the Nakama RPC id clients call to find or create a
	// joinable room.
	RpcQuickRoom = "quick_room"

	// MatchNameCharChitti is the authoritative match handler name registered
	// with Nakama.
	MatchNameCharChitti = "charchitti_room"

	// GameLabel identifies this game in match labels for quick-room queries.
	GameLabel = "charchitti"
)

// Op codes for client messages and server events. Payloads are the same JSON
// bodies the websocket substrate carries.
const (
	// Client -> Server
	OpJoin           int64 = 1
	OpUpdateSettings int64 = 2
	OpStartGame      int64 = 3
	OpPassChit       int64 = 4
	OpClaimWin       int64 = 5
	OpPlayAgain      int64 = 6
	OpRejoin         int64 = 7

	// Server -> Client events
	OpRoomState   int64 = 101
	OpYourHand    int64 = 102 // send privately
	OpError       int64 = 103 // send privately
	OpGameStarted int64 = 104
	OpWinner      int64 = 105
	OpRejoinToken int64 = 106 // send privately
)
