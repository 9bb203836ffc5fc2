// Package email delivers consultant decision mails.
package email

import (
	"context"
	"errors"
	"net/mail"
	"time"
)

// ErrInvalidRequest wraps every SendRequest validation failure.
var ErrInvalidRequest = errors.New("invalid email request")

// SendRequest is one outgoing message. From and ReplyTo fall back to the sender defaults.
type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
	Tag     string // provider-side category
}

// Validate rejects requests no provider would accept.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 {
		return errors.Join(ErrInvalidRequest, errors.New("no recipients"))
	}
	for _, to := range r.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
	}
	if r.Subject == "" {
		return errors.Join(ErrInvalidRequest, errors.New("subject is required"))
	}
	return nil
}

// SendResult identifies an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender hands messages to a delivery provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
