package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	TimeoutSec int
}

type SMTPMailer struct {
	opt SMTPOptions
}

func NewSMTPMailer(opt SMTPOptions) *SMTPMailer {
	if opt.Port == 0 {
		opt.Port = 587
	}
	if opt.TimeoutSec <= 0 {
		opt.TimeoutSec = 10
	}
	return &SMTPMailer{opt: opt}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	m := mail.NewMsg()
	if err := m.From(s.opt.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(s.opt.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(time.Duration(s.opt.TimeoutSec) * time.Second),
	}
	if s.opt.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.opt.Username),
			mail.WithPassword(s.opt.Password),
		)
	}
	c, err := mail.NewClient(s.opt.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}
