package mailer

import (
	"context"
	"fmt"
	"time"

	"commercial-file-service/pkg/logger"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Config struct {
	Host     string        `env:"SMTP_HOST" env-default:"localhost"`
	Port     int           `env:"SMTP_PORT" env-default:"587"`
	Username string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"SMTP_FROM" env-default:"CommercialFileManagement@netone.co.zw"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" env-default:"10s"`
}

// Sender delivers a single plain-text message and reports whether it went out.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

type Mailer struct {
	client  *mail.Client
	from    string
	ops     string
	timeout time.Duration
	deliver func(ctx context.Context, msg *mail.Msg) error
}

// New builds an SMTP mailer. opsEmail receives system messages and any send without a recipient.
func New(cfg Config, opsEmail string) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	m := &Mailer{client: client, from: cfg.From, ops: opsEmail, timeout: cfg.Timeout}
	m.deliver = func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	return m, nil
}

// Send makes one delivery attempt. Errors are logged, never returned.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) bool {
	if to == "" {
		to = m.ops
	}
	log := logger.GetLogger(ctx).With(zap.String("to", to), zap.String("subject", subject))

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		log.Error("invalid sender address", zap.Error(err))
		return false
	}
	if err := msg.To(to); err != nil {
		log.Error("invalid recipient address", zap.Error(err))
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	if err := m.deliver(ctx, msg); err != nil {
		log.Error("failed to send email", zap.Error(err))
		return false
	}
	log.Info("email sent")
	return true
}

func (m *Mailer) SendSystem(ctx context.Context, subject, body string) bool {
	return m.Send(ctx, m.ops, subject, body)
}
