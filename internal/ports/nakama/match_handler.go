package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/SwarupVishwas18/char-chitti/internal/app"
	"github.com/SwarupVishwas18/char-chitti/internal/config"
	"github.com/SwarupVishwas18/char-chitti/internal/domain"
	"github.com/SwarupVishwas18/char-chitti/internal/ports"
	"github.com/SwarupVishwas18/char-chitti/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for one room instance.
type MatchState struct {
	RoomID    string
	Room      *domain.Room
	App       *app.Service
	Presences map[string]runtime.Presence // player id -> presence
}

// Label is the match label advertised for quick-room queries.
type Label struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit creates the lobby-phase room. Nakama itself is the hosting
// substrate: presences are connections, the dispatcher is the delivery
// surface, and the match id is the stable room identity.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadRoomConfig("data/room_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load room config: %v", err)
	}

	roomID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		RoomID:    roomID,
		Room:      domain.NewRoom(config.DefaultSettings()),
		App:       app.NewService(nil, nil),
		Presences: make(map[string]runtime.Presence),
	}

	labelBytes, err := json.Marshal(buildLabel(state.Room))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt admits connections while the room is joinable and always
// readmits players with a retained record.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if _, retained := matchState.Room.Players[presence.GetUserId()]; retained {
		return state, true, ""
	}
	if matchState.Room.Phase != domain.PhaseLobby {
		return state, false, "game_in_progress"
	}
	if matchState.Room.ConnectedCount() >= matchState.Room.Settings.MaxPlayers {
		return state, false, "room_full"
	}
	return state, true, ""
}

// MatchJoin registers connections. A fresh connection only observes the room
// until it sends an explicit join message; a returning player is re-bound to
// their retained record immediately.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	transport := &dispatcherTransport{dispatcher: dispatcher, presences: matchState.Presences}

	for _, p := range presences {
		uid := p.GetUserId()
		matchState.Presences[uid] = p

		// Every new connection gets the current snapshot.
		payload, err := protocol.EncodeRoomState(protocol.Snapshot(matchState.RoomID, matchState.Room))
		if err != nil {
			logger.Error("MatchJoin: Failed to encode snapshot: %v", err)
			continue
		}
		if err := transport.SendTo(uid, protocol.TypeRoomState, payload); err != nil {
			logger.Error("MatchJoin: Failed to send snapshot to %s: %v", uid, err)
		}

		if _, retained := matchState.Room.Players[uid]; retained {
			events, err := matchState.App.Reconnect(matchState.Room, uid)
			if err != nil {
				logger.Warn("MatchJoin: Reconnect for %s failed: %v", uid, err)
				continue
			}
			if err := ports.DispatchEvents(transport, matchState.RoomID, matchState.Room, events); err != nil {
				logger.Error("MatchJoin: Dispatch failed: %v", err)
			}
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave maps presence departure to the room's disconnect semantics.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	transport := &dispatcherTransport{dispatcher: dispatcher, presences: matchState.Presences}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(matchState.Presences, uid)

		events := matchState.App.Disconnect(matchState.Room, uid)
		if err := ports.DispatchEvents(transport, matchState.RoomID, matchState.Room, events); err != nil {
			logger.Error("MatchLeave: Dispatch failed: %v", err)
		}
	}

	if len(matchState.Presences) == 0 && matchState.Room.Phase == domain.PhaseLobby {
		logger.Info("MatchLeave: Terminating empty lobby room.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLoop processes inbound room messages one at a time in arrival order;
// this serialization is what makes turn enforcement and win-claim races
// correct without locks.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	transport := &dispatcherTransport{dispatcher: dispatcher, presences: matchState.Presences}

	for _, msg := range messages {
		msgType := msgTypeFor(msg.GetOpCode())
		if msgType == "" {
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			continue
		}
		mh.handleMessage(matchState, transport, logger, msg.GetUserId(), msgType, msg.GetData())
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, transport ports.Transport, logger runtime.Logger, senderID, msgType string, data []byte) {
	var msg protocol.ClientMessage
	if len(data) > 0 {
		decoded, err := protocol.DecodeClientMessage(data)
		if err != nil {
			logger.Warn("handleMessage: Unparseable %s payload from %s", msgType, senderID)
			mh.sendError(transport, logger, senderID, err)
			return
		}
		msg = decoded
	}

	var events []app.Event
	var err error
	switch msgType {
	case protocol.TypeJoin:
		events, err = state.App.Join(state.Room, senderID, msg.Name)
	case protocol.TypeUpdateSettings:
		if msg.Settings == nil {
			err = app.ErrBadPayload
			break
		}
		events, err = state.App.UpdateSettings(state.Room, senderID, *msg.Settings)
	case protocol.TypeStartGame:
		events, err = state.App.StartGame(state.Room, senderID)
	case protocol.TypePassChit:
		events, err = state.App.PassChit(state.Room, senderID, msg.ChitIndex)
	case protocol.TypeClaimWin:
		events, err = state.App.ClaimWin(state.Room, senderID)
	case protocol.TypePlayAgain:
		events, err = state.App.PlayAgain(state.Room, senderID)
	case protocol.TypeRejoin:
		// Nakama user ids are stable across sessions, so re-binding happens
		// in MatchJoin; an explicit rejoin message is redundant here.
		events, err = state.App.Reconnect(state.Room, senderID)
	}

	if err != nil {
		logger.Debug("handleMessage: %s from %s rejected: %v", msgType, senderID, err)
		mh.sendError(transport, logger, senderID, err)
		return
	}
	if err := ports.DispatchEvents(transport, state.RoomID, state.Room, events); err != nil {
		logger.Error("handleMessage: Dispatch for %s failed: %v", msgType, err)
	}
}

func (mh *matchHandler) sendError(transport ports.Transport, logger runtime.Logger, playerID string, actionErr error) {
	if err := ports.SendError(transport, playerID, actionErr); err != nil {
		logger.Error("sendError: Failed to report to %s: %v", playerID, err)
	}
}

func buildLabel(room *domain.Room) Label {
	open := room.Phase == domain.PhaseLobby && room.ConnectedCount() < room.Settings.MaxPlayers
	return Label{Open: open, Game: GameLabel, Phase: string(room.Phase)}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(buildLabel(state.Room))
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

// MatchTerminate runs on room shutdown by the hosting substrate.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Room terminated for reason %d", reason)
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
