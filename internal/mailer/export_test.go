package mailer

import (
	"context"

	"github.com/wneessen/go-mail"
)

func (m *Mailer) SetDeliver(fn func(ctx context.Context, msg *mail.Msg) error) {
	m.deliver = fn
}
