package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"moodadmin/internal/adapters/email"
	"moodadmin/internal/domain/user"
)

// DecisionTag labels consultant decision mails at the provider.
const DecisionTag = "consultant_decision"

type message struct {
	subject  string
	markdown string
}

func approvedMessage(u user.User) message {
	return message{
		subject: "Your consultant application was approved",
		markdown: fmt.Sprintf("Hi %s,\n\n"+
			"Your consultant application has been **approved**. "+
			"You can now sign in to the app and start accepting conversations.\n\n"+
			"Thank you for supporting our community.", u.Name()),
	}
}

func rejectedMessage(u user.User, reason string) message {
	return message{
		subject: "Update on your consultant application",
		markdown: fmt.Sprintf("Hi %s,\n\n"+
			"After review, your consultant application was not approved.\n\n"+
			"**Reason:** %s\n\n"+
			"You are welcome to reply to this e-mail with any questions.", u.Name(), reason),
	}
}

// notifyApplicant e-mails the decision. A failed send is queued in the outbox when one
// is configured; the mutation itself never fails because of mail.
func notifyApplicant(ctx context.Context, deps ManageUserDeps, u user.User, msg message) {
	if deps.Mailer == nil || u.Email == "" {
		return
	}
	html, err := email.RenderMarkdown(msg.markdown)
	if err != nil {
		slog.Error("email_render_failed", "user_id", u.ID, "error", err)
		return
	}
	req := email.SendRequest{
		To:      []string{u.Email},
		Subject: msg.subject,
		HTML:    html,
		Tag:     DecisionTag,
	}
	res, err := deps.Mailer.Send(ctx, req)
	if err != nil {
		slog.Error("email_send_failed", "user_id", u.ID, "error", err)
		enqueueEmail(ctx, deps.Outbox, req, err, nowFunc(deps.Now))
		return
	}
	slog.Info("email_sent", "user_id", u.ID, "message_id", res.MessageID)
}
