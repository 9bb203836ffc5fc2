package projections

import (
	"context"
	"strings"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Result caps per section and overall.
const (
	MaxUserHits       = 5
	MaxConsultantHits = 3
	MaxTaskHits       = 5
	MaxSearchHits     = 10
)

// Hit types
const (
	HitUser       = "user"
	HitConsultant = "consultant"
	HitTask       = "task"
)

// SearchHit is one global search result linking to an admin page.
type SearchHit struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Badge    string `json:"badge"`
	Href     string `json:"href"`
}

// SearchResult carries the merged hits for a term.
type SearchResult struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// SearchDeps holds dependencies for global search.
type SearchDeps struct {
	Users records.UserReader
	Tasks records.TaskReader
}

// QuerySearch matches the term case-insensitively against users, consultants and tasks.
// POST: users first, then consultants, then tasks; at most MaxSearchHits in total
// INVARIANT: a blank term returns no hits without touching the store
func QuerySearch(ctx context.Context, term string, deps SearchDeps) (SearchResult, error) {
	result := SearchResult{Query: term, Hits: []SearchHit{}}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return result, nil
	}

	var (
		users []user.User
		tasks []task.Task
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			users, err = deps.Users.ListUsers(ctx, records.UserFilter{Limit: SearchUserLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			tasks, err = deps.Tasks.ListTasks(ctx, records.TaskFilter{})
			return err
		},
	)
	if err != nil {
		return SearchResult{}, err
	}

	userHits := 0
	for _, u := range users {
		if userHits == MaxUserHits {
			break
		}
		if userMatches(u, term) {
			result.Hits = append(result.Hits, SearchHit{
				Type: HitUser, ID: u.ID, Title: u.Name(), Subtitle: u.Email, Badge: u.Role, Href: "/admin/users",
			})
			userHits++
		}
	}

	consultantHits := 0
	for _, u := range users {
		if consultantHits == MaxConsultantHits {
			break
		}
		if !u.IsConsultant() || !userMatches(u, term) {
			continue
		}
		hit := SearchHit{
			Type: HitConsultant, ID: u.ID, Title: u.Name(),
			Subtitle: "Pending Approval", Badge: "pending", Href: "/admin/consultants/requests",
		}
		if u.Verified {
			hit.Subtitle, hit.Badge, hit.Href = "Verified Consultant", "verified", "/admin/consultants"
		}
		result.Hits = append(result.Hits, hit)
		consultantHits++
	}

	taskHits := 0
	for _, t := range tasks {
		if taskHits == MaxTaskHits {
			break
		}
		if !taskMatches(t, term) {
			continue
		}
		result.Hits = append(result.Hits, SearchHit{
			Type:     HitTask,
			ID:       t.ID,
			Title:    t.Title,
			Subtitle: "User: " + shortID(t.UserID) + "... | " + t.Status,
			Badge:    t.Status,
			Href:     "/admin/tasks",
		})
		taskHits++
	}

	if len(result.Hits) > MaxSearchHits {
		result.Hits = result.Hits[:MaxSearchHits]
	}
	return result, nil
}

func userMatches(u user.User, term string) bool {
	return u.Matches(term) || strings.Contains(strings.ToLower(u.ID), term)
}

func taskMatches(t task.Task, term string) bool {
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.UserID), term) ||
		strings.Contains(strings.ToLower(t.ID), term)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
