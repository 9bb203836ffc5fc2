package user

import (
	"errors"
	"strings"
	"time"
)

// Role constants
const (
	RoleUser       = "user"
	RoleConsultant = "consultant"
)

// DefaultRejectReason is stored when an admin rejects an application without a reason.
const DefaultRejectReason = "Application rejected"

// MaxRejectReasonLength bounds the admin-supplied rejection reason.
const MaxRejectReasonLength = 500

// Domain errors
var (
	ErrEmptyID           = errors.New("user id is required")
	ErrNotConsultant     = errors.New("user is not a consultant")
	ErrReasonTooLong     = errors.New("reject reason cannot exceed 500 characters")
	ErrInvalidActiveFlag = errors.New("active must be true or false")
)

// User is an account of the mobile app as seen by the dashboard.
type User struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	Active       bool      `json:"active"`
	Rejected     bool      `json:"rejected"`
	RejectReason string    `json:"rejectReason,omitempty"`
	CVURL        string    `json:"cvUrl,omitempty"`
	LinkedInURL  string    `json:"linkedinUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Name returns the display name, falling back to the email address.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// IsConsultant reports whether the user applied as a consultant.
func (u User) IsConsultant() bool {
	return u.Role == RoleConsultant
}

// IsVerifiedConsultant reports whether the user is an approved consultant.
func (u User) IsVerifiedConsultant() bool {
	return u.Role == RoleConsultant && u.Verified
}

// IsPendingConsultant reports whether the consultant application awaits a decision.
func (u User) IsPendingConsultant() bool {
	return u.Role == RoleConsultant && !u.Verified
}

// Matches reports whether the lower-cased term appears in the display name or email.
// PRE: term is already lower-cased
func (u User) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.DisplayName), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

// Approval is the field change written when a consultant is approved.
type Approval struct {
	Verified bool
}

// Rejection is the field change written when a consultant is rejected.
type Rejection struct {
	Verified     bool
	Rejected     bool
	RejectReason string
}

// NewApproval builds the approval update.
// POST: Verified is true
func NewApproval() Approval {
	return Approval{Verified: true}
}

// NewRejection builds the rejection update, defaulting the reason.
// PRE: reason may be empty
// POST: Verified=false, Rejected=true, RejectReason non-empty
func NewRejection(reason string) (Rejection, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectReason
	}
	if len(reason) > MaxRejectReasonLength {
		return Rejection{}, ErrReasonTooLong
	}
	return Rejection{Verified: false, Rejected: true, RejectReason: reason}, nil
}
