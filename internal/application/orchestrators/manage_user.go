package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"moodadmin/internal/adapters/email"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/audit"
	"moodadmin/internal/domain/user"
)

// UserStoreForMutation defines the store interface needed by the user mutations.
type UserStoreForMutation interface {
	records.UserReader
	records.UserWriter
}

// ManageUserDeps holds dependencies for the user mutations.
type ManageUserDeps struct {
	Users  UserStoreForMutation
	Audit  AuditRecorder
	Mailer email.Sender // optional; approve and reject notify the applicant when set
	Outbox OutboxWriter // optional; undelivered decision mails are queued here
	Now    func() time.Time
}

// ApproveConsultantInput carries input for approving a consultant application.
type ApproveConsultantInput struct {
	UserID string
	Actor  Actor
}

// ExecuteApproveConsultant marks a consultant as verified.
// PRE: UserID names a consultant
// POST: verified=true; the applicant is notified when a mailer is configured
// INVARIANT: approving a verified consultant succeeds without writing, mailing or auditing
func ExecuteApproveConsultant(ctx context.Context, input ApproveConsultantInput, deps ManageUserDeps) error {
	u, err := loadConsultant(ctx, input.UserID, deps.Users)
	if err != nil {
		return err
	}
	if u.Verified {
		slog.Info("user_event", "event", "consultant_already_verified", "user_id", u.ID, "actor", input.Actor.Email)
		return nil
	}

	approval := user.NewApproval()
	if err := deps.Users.UpdateUser(ctx, u.ID, records.UserPatch{Verified: &approval.Verified}); err != nil {
		return err
	}

	slog.Info("user_event", "event", "consultant_approved", "user_id", u.ID, "actor", input.Actor.Email)
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryUser, audit.ActionApprove, nowFunc(deps.Now)).
		WithResource(audit.ResourceUser, u.ID).
		WithDescription("consultant approved: "+u.Email))
	notifyApplicant(ctx, deps, u, approvedMessage(u))
	return nil
}

// RejectConsultantInput carries input for rejecting a consultant application.
type RejectConsultantInput struct {
	UserID string
	Reason string // empty means user.DefaultRejectReason
	Actor  Actor
}

// ExecuteRejectConsultant marks a consultant application as rejected.
// PRE: UserID names a consultant; Reason is at most user.MaxRejectReasonLength bytes
// POST: verified=false, rejected=true, rejectReason set
func ExecuteRejectConsultant(ctx context.Context, input RejectConsultantInput, deps ManageUserDeps) error {
	rejection, err := user.NewRejection(input.Reason)
	if err != nil {
		return err
	}
	u, err := loadConsultant(ctx, input.UserID, deps.Users)
	if err != nil {
		return err
	}

	patch := records.UserPatch{
		Verified:     &rejection.Verified,
		Rejected:     &rejection.Rejected,
		RejectReason: &rejection.RejectReason,
	}
	if err := deps.Users.UpdateUser(ctx, u.ID, patch); err != nil {
		return err
	}

	slog.Info("user_event", "event", "consultant_rejected", "user_id", u.ID, "actor", input.Actor.Email)
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryUser, audit.ActionReject, nowFunc(deps.Now)).
		WithResource(audit.ResourceUser, u.ID).
		WithDescription("consultant rejected: "+rejection.RejectReason))
	notifyApplicant(ctx, deps, u, rejectedMessage(u, rejection.RejectReason))
	return nil
}

// SetUserActiveInput carries input for enabling or disabling an account.
type SetUserActiveInput struct {
	UserID string
	Active bool
	Actor  Actor
}

// ExecuteSetUserActive writes the active flag.
// PRE: UserID is non-empty
// POST: returns records.ErrNotFound when the user does not exist
func ExecuteSetUserActive(ctx context.Context, input SetUserActiveInput, deps ManageUserDeps) error {
	if input.UserID == "" {
		return user.ErrEmptyID
	}
	if err := deps.Users.UpdateUser(ctx, input.UserID, records.UserPatch{Active: &input.Active}); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if input.Active {
		action = audit.ActionActivate
	}
	slog.Info("user_event", "event", "user_"+string(action)+"d", "user_id", input.UserID, "actor", input.Actor.Email)
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryUser, action, nowFunc(deps.Now)).
		WithResource(audit.ResourceUser, input.UserID).
		WithMetadata(`{"active":`+strconv.FormatBool(input.Active)+`}`))
	return nil
}

// DeleteUserInput carries input for deleting a user document.
type DeleteUserInput struct {
	UserID string
	Actor  Actor
}

// ExecuteDeleteUser removes the user document permanently.
// PRE: UserID is non-empty
// POST: the document is gone; related chats, tasks and entries are left untouched
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps ManageUserDeps) error {
	if input.UserID == "" {
		return user.ErrEmptyID
	}
	u, err := deps.Users.GetUser(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := deps.Users.DeleteUser(ctx, u.ID); err != nil {
		return err
	}

	slog.Warn("user_event", "event", "user_deleted", "user_id", u.ID, "actor", input.Actor.Email)
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryUser, audit.ActionDelete, nowFunc(deps.Now)).
		WithSeverity(audit.SeverityCritical).
		WithResource(audit.ResourceUser, u.ID).
		WithDescription(fmt.Sprintf("deleted %s user %s", u.Role, u.Email)))
	return nil
}

func loadConsultant(ctx context.Context, id string, users records.UserReader) (user.User, error) {
	if id == "" {
		return user.User{}, user.ErrEmptyID
	}
	u, err := users.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsConsultant() {
		return user.User{}, user.ErrNotConsultant
	}
	return u, nil
}
