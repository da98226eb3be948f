package mail

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var _ Sender = (*SMTP)(nil)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender address on every outgoing message.
	From string
}

// SMTP sends messages through an SMTP relay using a persistent client
// configuration. Each Send dials, delivers, and closes.
type SMTP struct {
	client *gomail.Client
	from   string
}

// NewSMTP builds the SMTP sender. Connection problems surface on the first
// Send, not here.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}
	return &SMTP{client: client, from: cfg.From}, nil
}

// Send delivers one plain-text message.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrNoRecipient
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return &TransportError{To: to, Err: errors.Wrap(err, "set from")}
	}
	if err := msg.To(to); err != nil {
		return &TransportError{To: to, Err: errors.Wrap(err, "set to")}
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		zctx.From(ctx).Error("Email delivery failed",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return &TransportError{To: to, Err: err}
	}

	zctx.From(ctx).Info("Email delivered",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}
