package projections

import (
	"context"
	"errors"
	"testing"

	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/user"
)

func pointsFixture() *fakeStore {
	return &fakeStore{
		users: []user.User{{ID: "u4", DisplayName: "Dee"}},
		points: []points.UserPoints{
			{UserID: "u1", UserName: "Ana", TotalPoints: 50},
			{UserID: "u2", UserName: "Bo", TotalPoints: 50},
			{UserID: "u3", UserName: "Cy", TotalPoints: 30},
		},
		txs: []points.Transaction{
			{ID: "x1", UserID: "u2", Points: 40, Type: points.TypeEarned},
			{ID: "x2", UserID: "u2", Points: 15, Type: points.TypeEarned},
			{ID: "x3", UserID: "u2", Points: -5, Type: points.TypeAdjusted},
			{ID: "x4", UserID: "u3", Points: 30, Type: points.TypeEarned},
		},
	}
}

// TestQueryGetLeaderboard keeps store order for positions.
func TestQueryGetLeaderboard(t *testing.T) {
	store := pointsFixture()
	got, err := QueryGetLeaderboard(context.Background(), GetLeaderboardDeps{Points: store})
	if err != nil {
		t.Fatalf("QueryGetLeaderboard() error = %v", err)
	}
	if got.TotalUsers != 3 || got.TotalPoints != 130 || got.MeanPoints != 43 {
		t.Errorf("stats = %d/%d/%d, want 3/130/43", got.TotalUsers, got.TotalPoints, got.MeanPoints)
	}
	for i, s := range got.Standings {
		if s.Position != i+1 {
			t.Errorf("Standings[%d].Position = %d", i, s.Position)
		}
	}
}

// TestQueryGetPointsHistory tests standing lookup and per-type totals.
func TestQueryGetPointsHistory(t *testing.T) {
	store := pointsFixture()
	deps := GetLeaderboardDeps{Points: store, Users: store}
	ctx := context.Background()

	got, err := QueryGetPointsHistory(ctx, "u2", deps)
	if err != nil {
		t.Fatalf("QueryGetPointsHistory() error = %v", err)
	}
	if got.Standing == nil || got.Standing.Position != 2 || got.UserName != "Bo" {
		t.Errorf("standing = %+v, name %q", got.Standing, got.UserName)
	}
	if len(got.History.Transactions) != 3 || got.History.TotalEarned != 55 || got.History.TotalAdjusted != -5 {
		t.Errorf("History = %+v", got.History)
	}

	got, err = QueryGetPointsHistory(ctx, "u4", deps)
	if err != nil {
		t.Fatalf("QueryGetPointsHistory(u4) error = %v", err)
	}
	if got.Standing != nil || got.UserName != "Dee" || len(got.History.Transactions) != 0 {
		t.Errorf("u4 = %+v", got)
	}

	if _, err := QueryGetPointsHistory(ctx, "", deps); !errors.Is(err, user.ErrEmptyID) {
		t.Errorf("empty id error = %v", err)
	}
}
