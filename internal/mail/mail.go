// Package mail defines the transactional email collaborator and its SMTP
// implementation.
package mail

import (
	"context"

	"github.com/go-faster/errors"
)

// TransportError wraps an email transport failure. Order submission treats
// any transport failure as a failed submission; nothing is retried.
type TransportError struct {
	To  string
	Err error
}

func (e *TransportError) Error() string {
	return "send mail to " + e.To + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrNoRecipient is returned before dialing when the recipient is empty.
var ErrNoRecipient = errors.New("mail recipient is empty")

// Sender delivers a single plain-text message. Implementations are
// constructed once at process start and injected into the dispatcher.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
