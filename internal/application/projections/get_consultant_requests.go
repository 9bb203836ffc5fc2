package projections

import (
	"context"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/user"
)

// RequestFetchLimit caps the unverified consultants listed for review.
const RequestFetchLimit = 100

// GetConsultantRequestsResult lists consultants awaiting a decision.
// Rejected applicants stay in the list with Rejected set.
type GetConsultantRequestsResult struct {
	Requests []user.User `json:"requests"`
	Pending  int         `json:"pending"`
	Rejected int         `json:"rejected"`
}

// GetConsultantRequestsDeps holds dependencies for the requests projection.
type GetConsultantRequestsDeps struct {
	Users records.UserReader
}

// QueryGetConsultantRequests lists unverified consultants, newest first.
func QueryGetConsultantRequests(ctx context.Context, deps GetConsultantRequestsDeps) (GetConsultantRequestsResult, error) {
	verified := false
	users, err := deps.Users.ListUsers(ctx, records.UserFilter{
		Role:     user.RoleConsultant,
		Verified: &verified,
		Limit:    RequestFetchLimit,
	})
	if err != nil {
		return GetConsultantRequestsResult{}, err
	}
	result := GetConsultantRequestsResult{Requests: users}
	if result.Requests == nil {
		result.Requests = []user.User{}
	}
	for _, u := range users {
		if u.Rejected {
			result.Rejected++
		} else {
			result.Pending++
		}
	}
	return result, nil
}
