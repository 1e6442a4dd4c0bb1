package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcQuickRoomJoin finds a joinable room or creates a new one, returning the
// match id the client should join.
func RpcQuickRoomJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.open:true +label.game:%s", GameLabel)
	minSize := 0
	maxSize := 8

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcQuickRoomJoin [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		matchID := matches[0].MatchId
		logger.Info("RpcQuickRoomJoin [User:%s]: Found existing room %s", userID, matchID)
		return matchID, nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameCharChitti, nil)
	if err != nil {
		logger.Error("RpcQuickRoomJoin [User:%s]: Failed to create room: %v", userID, err)
		return "", err
	}

	logger.Info("RpcQuickRoomJoin [User:%s]: Created new room %s", userID, matchID)
	return matchID, nil
}
