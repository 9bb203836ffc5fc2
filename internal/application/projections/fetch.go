package projections

import (
	"context"
	"sync"

	"moodadmin/internal/domain/user"
)

// Fetch limits for pages that aggregate over whole collections.
const (
	UserFetchLimit  = 1000
	SearchUserLimit = 100
	HistoryLimit    = 200
)

// fetchAll runs independent store reads concurrently and waits for every one.
// POST: returns the first error in argument order, or nil
func fetchAll(ctx context.Context, fetches ...func(context.Context) error) error {
	errs := make([]error, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch(ctx)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// userNames maps user IDs to display names.
func userNames(users []user.User) map[string]string {
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Name()
	}
	return out
}
