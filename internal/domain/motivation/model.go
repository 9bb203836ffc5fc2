package motivation

import "time"

// Reel is a motivational video shown in the app's lounge. Admins can only view them.
type Reel struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Source       string    `json:"source"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CountActive returns how many reels are currently shown to users.
func CountActive(reels []Reel) int {
	n := 0
	for _, r := range reels {
		if r.Active {
			n++
		}
	}
	return n
}

// CountAuthors returns the number of distinct authors.
func CountAuthors(reels []Reel) int {
	seen := make(map[string]struct{}, len(reels))
	for _, r := range reels {
		seen[r.Author] = struct{}{}
	}
	return len(seen)
}
