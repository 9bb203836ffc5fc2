package projections

import (
	"context"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/user"
)

// UnknownConsultant labels chats whose consultant is not among the fetched users.
const UnknownConsultant = "Unknown Consultant"

// ChatRow is one chat's metadata with display names resolved.
type ChatRow struct {
	chat.Chat
	ConsultantName   string `json:"consultantName"`
	ParticipantCount int    `json:"participantCount"`
	Active           bool   `json:"active"`
}

// GetChatsResult carries the chat table and overview counters.
type GetChatsResult struct {
	Chats    []ChatRow     `json:"chats"`
	Overview chat.Overview `json:"overview"`
}

// GetChatsDeps holds dependencies for the chats projection.
type GetChatsDeps struct {
	Users records.UserReader
	Chats records.ChatReader
}

// QueryGetChats lists chat metadata. Message text is never read.
// PRE: now is the request time
func QueryGetChats(ctx context.Context, deps GetChatsDeps, now time.Time) (GetChatsResult, error) {
	var (
		users []user.User
		chats []chat.Chat
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			users, err = deps.Users.ListUsers(ctx, records.UserFilter{Limit: UserFetchLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			chats, err = deps.Chats.ListChats(ctx)
			return err
		},
	)
	if err != nil {
		return GetChatsResult{}, err
	}

	names := userNames(users)
	rows := make([]ChatRow, 0, len(chats))
	for _, c := range chats {
		name, ok := names[c.ConsultantID]
		if !ok {
			name = UnknownConsultant
		}
		rows = append(rows, ChatRow{
			Chat:             c,
			ConsultantName:   name,
			ParticipantCount: len(c.Participants),
			Active:           c.IsActive(now),
		})
	}
	return GetChatsResult{Chats: rows, Overview: chat.Summarise(chats, now)}, nil
}
