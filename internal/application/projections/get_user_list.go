package projections

import (
	"context"
	"fmt"
	"strings"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/application/listutil"
	"moodadmin/internal/domain/user"
)

// UserSortColumns are the sortable columns of the users table.
var UserSortColumns = []string{"name", "email", "role", "createdAt"}

var userComparators = map[string]listutil.Comparator[user.User]{
	"name":      listutil.By(func(u user.User) string { return strings.ToLower(u.Name()) }),
	"email":     listutil.By(func(u user.User) string { return strings.ToLower(u.Email) }),
	"role":      listutil.By(func(u user.User) string { return u.Role }),
	"createdAt": listutil.By(func(u user.User) int64 { return u.CreatedAt.UnixNano() }),
}

// GetUserListQuery carries the users page filters.
type GetUserListQuery struct {
	Role     string // "", "all", user.RoleUser or user.RoleConsultant
	Verified string // "", "all", "true" or "false"
	List     listutil.ListParams
}

// UserCounts summarises the fetched users before the search term is applied.
type UserCounts struct {
	Total       int `json:"total"`
	Users       int `json:"users"`
	Consultants int `json:"consultants"`
	Verified    int `json:"verified"`
	Inactive    int `json:"inactive"`
}

// GetUserListResult carries one page of users.
type GetUserListResult struct {
	Users    []user.User       `json:"users"`
	PageInfo listutil.PageInfo `json:"pageInfo"`
	Counts   UserCounts        `json:"counts"`
}

// GetUserListDeps holds dependencies for the users projection.
type GetUserListDeps struct {
	Users records.UserReader
}

func (q GetUserListQuery) filter() (records.UserFilter, error) {
	f := records.UserFilter{Limit: UserFetchLimit}
	switch q.Role {
	case "", "all":
	case user.RoleUser, user.RoleConsultant:
		f.Role = q.Role
	default:
		return f, fmt.Errorf("role %q: %w", q.Role, ErrInvalidFilter)
	}
	switch q.Verified {
	case "", "all":
	case "true", "false":
		v := q.Verified == "true"
		f.Verified = &v
	default:
		return f, fmt.Errorf("verified %q: %w", q.Verified, ErrInvalidFilter)
	}
	return f, nil
}

// QueryGetUserList lists users with role/verified filtering done by the store and
// search, sort and paging done here.
// PRE: query.List.Search is lower-cased
// POST: Users holds at most PerPage rows; Counts ignore the search term
func QueryGetUserList(ctx context.Context, query GetUserListQuery, deps GetUserListDeps) (GetUserListResult, error) {
	filter, err := query.filter()
	if err != nil {
		return GetUserListResult{}, err
	}
	users, err := deps.Users.ListUsers(ctx, filter)
	if err != nil {
		return GetUserListResult{}, err
	}

	counts := UserCounts{Total: len(users)}
	for _, u := range users {
		if u.IsConsultant() {
			counts.Consultants++
		} else {
			counts.Users++
		}
		if u.Verified {
			counts.Verified++
		}
		if !u.Active {
			counts.Inactive++
		}
	}

	matched := listutil.Filter(users, func(u user.User) bool { return u.Matches(query.List.Search) })
	listutil.Sort(matched, query.List.SortParams, userComparators)
	info := listutil.NewPageInfo(query.List.Page, query.List.PerPage, len(matched))

	return GetUserListResult{
		Users:    listutil.Paginate(matched, info),
		PageInfo: info,
		Counts:   counts,
	}, nil
}
