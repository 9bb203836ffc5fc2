package chat

import "time"

// ActiveWindow is how recent the last message must be for a chat to count as active.
const ActiveWindow = 24 * time.Hour

// Chat is conversation metadata. Message content is deliberately absent from this type.
type Chat struct {
	ID                string     `json:"id"`
	ConsultantID      string     `json:"consultantId"`
	Participants      []string   `json:"participants"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastMessageTime   *time.Time `json:"lastMessageTime,omitempty"`
	LastSenderID      string     `json:"lastSenderId,omitempty"`
	LastMessageSeenBy []string   `json:"lastMessageSeenBy"`
}

// IsActive reports whether the last message arrived within ActiveWindow of now.
func (c Chat) IsActive(now time.Time) bool {
	if c.LastMessageTime == nil {
		return false
	}
	return now.Sub(*c.LastMessageTime) < ActiveWindow
}

// Caseload is a consultant's handled cases and the distinct users they served.
type Caseload struct {
	ConsultantID string
	CasesHandled int
	UniqueUsers  map[string]struct{}
}

// UniqueUserCount returns the size of the unique user set.
func (c Caseload) UniqueUserCount() int {
	return len(c.UniqueUsers)
}

// ComputeCaseload counts the chats assigned to consultantID and collects every other
// participant across them.
// PRE: chats is the full chat list; consultantID is non-empty
// POST: a consultant with no chats yields zero cases and an empty set
// INVARIANT: the consultant's own identifier never appears in UniqueUsers
func ComputeCaseload(chats []Chat, consultantID string) Caseload {
	load := Caseload{ConsultantID: consultantID, UniqueUsers: make(map[string]struct{})}
	for _, c := range chats {
		if c.ConsultantID != consultantID {
			continue
		}
		load.CasesHandled++
		for _, p := range c.Participants {
			if p != consultantID {
				load.UniqueUsers[p] = struct{}{}
			}
		}
	}
	return load
}

// Overview summarises chat activity for the chats page.
type Overview struct {
	TotalChats        int `json:"totalChats"`
	ActiveToday       int `json:"activeToday"`
	UniqueConsultants int `json:"uniqueConsultants"`
	TotalParticipants int `json:"totalParticipants"`
}

// Summarise computes the chat overview counters at now.
func Summarise(chats []Chat, now time.Time) Overview {
	consultants := make(map[string]struct{})
	ov := Overview{TotalChats: len(chats)}
	for _, c := range chats {
		if c.IsActive(now) {
			ov.ActiveToday++
		}
		consultants[c.ConsultantID] = struct{}{}
		ov.TotalParticipants += len(c.Participants)
	}
	ov.UniqueConsultants = len(consultants)
	return ov
}
