package projections

import (
	"context"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/user"
)

// GetLeaderboardDeps holds dependencies for the leaderboard projections.
type GetLeaderboardDeps struct {
	Points records.PointsReader
	Users  records.UserReader
}

// QueryGetLeaderboard ranks every points document in store order.
// POST: positions follow the store's totalPoints desc, userId asc order
func QueryGetLeaderboard(ctx context.Context, deps GetLeaderboardDeps) (points.Leaderboard, error) {
	rows, err := deps.Points.ListUserPoints(ctx, 0)
	if err != nil {
		return points.Leaderboard{}, err
	}
	return points.NewLeaderboard(rows), nil
}

// GetPointsHistoryResult is one user's transaction history and standing.
type GetPointsHistoryResult struct {
	UserID   string           `json:"userId"`
	UserName string           `json:"userName"`
	Standing *points.Standing `json:"standing,omitempty"`
	History  points.History   `json:"history"`
}

// QueryGetPointsHistory fetches the newest HistoryLimit transactions of one user.
// PRE: userID is non-empty
// POST: Standing is nil when the user has no points document
func QueryGetPointsHistory(ctx context.Context, userID string, deps GetLeaderboardDeps) (GetPointsHistoryResult, error) {
	if userID == "" {
		return GetPointsHistoryResult{}, user.ErrEmptyID
	}
	var (
		rows []points.UserPoints
		txs  []points.Transaction
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			rows, err = deps.Points.ListUserPoints(ctx, 0)
			return err
		},
		func(ctx context.Context) (err error) {
			txs, err = deps.Points.ListPointsTransactions(ctx, records.TransactionFilter{UserID: userID, Limit: HistoryLimit})
			return err
		},
	)
	if err != nil {
		return GetPointsHistoryResult{}, err
	}

	result := GetPointsHistoryResult{UserID: userID, UserName: UnknownUser, History: points.NewHistory(txs)}
	for _, s := range points.NewLeaderboard(rows).Standings {
		if s.UserID == userID {
			result.Standing = &s
			if s.UserName != "" {
				result.UserName = s.UserName
			}
			break
		}
	}
	if result.Standing == nil && deps.Users != nil {
		if u, err := deps.Users.GetUser(ctx, userID); err == nil {
			result.UserName = u.Name()
		}
	}
	return result, nil
}
