package points

import (
	"math"
	"time"
)

// Transaction types
const (
	TypeEarned   = "earned"
	TypeAdjusted = "adjusted"
)

// PodiumSize is the number of top entries shown on the podium.
const PodiumSize = 3

// UserPoints is a user's accumulated points as stored.
type UserPoints struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	TotalPoints int       `json:"totalPoints"`
	Rank        int       `json:"rank"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Transaction is a single points movement for a user.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId,omitempty"`
	Points    int       `json:"points"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Standing is one leaderboard row with its positional rank.
type Standing struct {
	UserPoints
	Position int `json:"position"`
}

// Leaderboard is the ranked list plus the derived summary.
type Leaderboard struct {
	Standings   []Standing `json:"standings"`
	TotalUsers  int        `json:"totalUsers"`
	TotalPoints int        `json:"totalPoints"`
	MeanPoints  int        `json:"meanPoints"`
	Podium      []Standing `json:"podium"`
}

// TopUser returns the first standing, if any.
func (l Leaderboard) TopUser() (Standing, bool) {
	if len(l.Standings) == 0 {
		return Standing{}, false
	}
	return l.Standings[0], true
}

// NewLeaderboard assigns positions 1..n in the order given.
// PRE: rows are already sorted by TotalPoints descending by the store
// POST: Position is the 1-based index; rows are never re-sorted here
// INVARIANT: MeanPoints is 0 when there are no rows
func NewLeaderboard(rows []UserPoints) Leaderboard {
	lb := Leaderboard{
		Standings:  make([]Standing, len(rows)),
		TotalUsers: len(rows),
	}
	for i, r := range rows {
		lb.Standings[i] = Standing{UserPoints: r, Position: i + 1}
		lb.TotalPoints += r.TotalPoints
	}
	if lb.TotalUsers > 0 {
		lb.MeanPoints = int(math.Round(float64(lb.TotalPoints) / float64(lb.TotalUsers)))
	}
	n := min(PodiumSize, len(lb.Standings))
	lb.Podium = lb.Standings[:n]
	return lb
}

// History is a user's transactions with totals per type.
type History struct {
	Transactions  []Transaction `json:"transactions"`
	TotalEarned   int           `json:"totalEarned"`
	TotalAdjusted int           `json:"totalAdjusted"`
}

// NewHistory sums earned and adjusted transactions separately.
func NewHistory(txs []Transaction) History {
	h := History{Transactions: txs}
	if h.Transactions == nil {
		h.Transactions = []Transaction{}
	}
	for _, tx := range txs {
		switch tx.Type {
		case TypeEarned:
			h.TotalEarned += tx.Points
		case TypeAdjusted:
			h.TotalAdjusted += tx.Points
		}
	}
	return h
}
