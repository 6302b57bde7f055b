package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const emailTimeout = 15 * time.Second

// EmailNotifier mails the digest from a fixed sender to a fixed receiver over implicit TLS.
type EmailNotifier struct {
	cfg  config.EmailConfig
	dial mail.DialContextFunc
	now  func() time.Time
}

var _ ports.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier builds a notifier for cfg. The password never comes from the config file.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, now: time.Now}
}

// Notify sends one message carrying every article.
func (n *EmailNotifier) Notify(ctx context.Context, articles []domain.Article) error {
	if n.cfg.Host == "" || n.cfg.Sender == "" || n.cfg.Receiver == "" {
		return errors.New("email notifier misconfigured")
	}

	msg, err := n.compose(articles)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", n.cfg.Receiver, err)
	}
	return nil
}

func (n *EmailNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithSSL(),
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(emailTimeout),
		mail.WithTLSConfig(&tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}),
	}
	if n.cfg.Password != "" {
		username := n.cfg.Username
		if username == "" {
			username = n.cfg.Sender
		}
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	if n.dial != nil {
		opts = append(opts, mail.WithDialContextFunc(n.dial))
	}
	return opts
}

func (n *EmailNotifier) compose(articles []domain.Article) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingQP))
	if err := msg.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("sender %q: %w", n.cfg.Sender, err)
	}
	if err := msg.To(n.cfg.Receiver); err != nil {
		return nil, fmt.Errorf("receiver %q: %w", n.cfg.Receiver, err)
	}
	msg.Subject(Subject)
	msg.SetDateWithValue(n.now())
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, FormatMessage(articles))
	return msg, nil
}
