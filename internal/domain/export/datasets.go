package export

import (
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Dataset names accepted by the export endpoint.
const (
	DatasetUsers              = "users"
	DatasetConsultantRequests = "consultant-requests"
	DatasetTasks              = "tasks"
	DatasetLeaderboard        = "leaderboard"
	DatasetEmergencyContacts  = "emergency-contacts"
)

// Column sets per dataset.
var (
	UserColumns = []Column{
		{"id", "User ID"},
		{"displayName", "Display Name"},
		{"email", "Email"},
		{"role", "Role"},
		{"verified", "Verified"},
		{"active", "Active"},
		{"createdAt", "Created At"},
	}
	RequestColumns = []Column{
		{"id", "User ID"},
		{"displayName", "Name"},
		{"email", "Email"},
		{"createdAt", "Applied Date"},
		{"cvUrl", "CV URL"},
		{"linkedinUrl", "LinkedIn URL"},
	}
	TaskColumns = []Column{
		{"id", "Task ID"},
		{"userId", "User ID"},
		{"title", "Title"},
		{"status", "Status"},
		{"pointsAwarded", "Points Awarded"},
		{"requiresVerification", "Requires Verification"},
		{"date", "Task Date"},
		{"createdAt", "Created At"},
		{"completedAt", "Completed At"},
	}
	LeaderboardColumns = []Column{
		{"rank", "Rank"},
		{"userId", "User ID"},
		{"userName", "User Name"},
		{"totalPoints", "Total Points"},
		{"lastUpdated", "Last Updated"},
	}
	ContactColumns = []Column{
		{"id", "Contact ID"},
		{"userId", "User ID"},
		{"name", "Contact Name"},
		{"phoneNumber", "Phone Number"},
		{"relationship", "Relationship"},
		{"createdAt", "Created At"},
		{"updatedAt", "Updated At"},
	}
)

// UserRecords converts users for the users and consultant-requests datasets.
func UserRecords(users []user.User) []Record {
	out := make([]Record, len(users))
	for i, u := range users {
		out[i] = Record{
			"id":          u.ID,
			"displayName": u.DisplayName,
			"email":       u.Email,
			"role":        u.Role,
			"verified":    u.Verified,
			"active":      u.Active,
			"createdAt":   u.CreatedAt,
			"cvUrl":       u.CVURL,
			"linkedinUrl": u.LinkedInURL,
		}
	}
	return out
}

// TaskRecords converts tasks for the tasks dataset.
func TaskRecords(tasks []task.Task) []Record {
	out := make([]Record, len(tasks))
	for i, t := range tasks {
		out[i] = Record{
			"id":                   t.ID,
			"userId":               t.UserID,
			"title":                t.Title,
			"status":               t.Status,
			"pointsAwarded":        t.PointsAwarded,
			"requiresVerification": t.RequiresVerification,
			"date":                 t.Date,
			"createdAt":            t.CreatedAt,
			"completedAt":          t.CompletedAt,
		}
	}
	return out
}

// StandingRecords converts leaderboard rows; rank is the positional rank.
func StandingRecords(standings []points.Standing) []Record {
	out := make([]Record, len(standings))
	for i, s := range standings {
		out[i] = Record{
			"rank":        s.Position,
			"userId":      s.UserID,
			"userName":    s.UserName,
			"totalPoints": s.TotalPoints,
			"lastUpdated": s.LastUpdated,
		}
	}
	return out
}

// ContactRecords converts emergency contacts.
func ContactRecords(contacts []contact.EmergencyContact) []Record {
	out := make([]Record, len(contacts))
	for i, c := range contacts {
		out[i] = Record{
			"id":           c.ID,
			"userId":       c.UserID,
			"name":         c.Name,
			"phoneNumber":  c.PhoneNumber,
			"relationship": c.Relationship,
			"createdAt":    c.CreatedAt,
			"updatedAt":    c.UpdatedAt,
		}
	}
	return out
}
