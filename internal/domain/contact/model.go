package contact

import "time"

// EmergencyContact is an SOS contact registered by a user.
type EmergencyContact struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phoneNumber"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CountUsers returns the number of distinct users with at least one contact.
func CountUsers(contacts []EmergencyContact) int {
	seen := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		seen[c.UserID] = struct{}{}
	}
	return len(seen)
}
