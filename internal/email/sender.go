package email

import (
	"context"
	"errors"
)

// Mailer entrega correos de texto plano. Debe respetar la cancelacion de ctx.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Mailer que siempre falla; se usa cuando SMTP no esta configurado.
func NewDisabledSender(reason string) Mailer {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
