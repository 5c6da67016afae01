// Package notify renders and delivers outbound email, and runs best-effort
// work after a transaction has committed.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("notify: message has no recipient")

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer 只打日志不投递（未配置 SMTP 时使用）
type LogMailer struct{ L *zap.Logger }

func (m LogMailer) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	m.L.Info("mail (not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_len", len(msg.Body)),
	)
	return nil
}
