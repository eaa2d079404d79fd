package mail

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := m.compose(recipient, subject, body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrapf(err, "send %q to %s", subject, recipient)
	}
	return nil
}

func (m *Mailer) compose(recipient, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// LogNotifier writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.Log.Info("mail not configured, message logged",
		zap.String("to", recipient), zap.String("subject", subject), zap.Int("bytes", len(body)))
	return nil
}

// New picks the SMTP mailer when a host is configured.
func New(cfg config.MailConfig, log *zap.Logger) infra.Notifier {
	if cfg.Host == "" {
		return LogNotifier{Log: log}
	}
	return NewMailer(cfg)
}

var (
	_ infra.Notifier = (*Mailer)(nil)
	_ infra.Notifier = LogNotifier{}
)
