package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"marketplace/pkg/logger"

	"github.com/wneessen/go-mail"
)

// ErrInvalidMessage marks failures retrying cannot fix (bad address, empty body).
var ErrInvalidMessage = errors.New("invalid email message")

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, email Email) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string
	Timeout   time.Duration
}

type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
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
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg, err := buildMessage(s.from, email)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", email.To, err)
	}
	return nil
}

func buildMessage(from string, email Email) (*mail.Msg, error) {
	if email.Text == "" && email.HTML == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrInvalidMessage, from, err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("%w: to %q: %v", ErrInvalidMessage, email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()

	switch {
	case email.Text != "" && email.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}
	return msg, nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// LogSender writes emails to the log instead of delivering them. It is used
// when no SMTP host is configured.
type LogSender struct {
	log  *logger.Logger
	mu   sync.Mutex
	sent []Email
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, email Email) error {
	if email.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidMessage)
	}
	s.mu.Lock()
	s.sent = append(s.sent, email)
	s.mu.Unlock()

	s.log.Info("Email captured (no SMTP host configured)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

func (s *LogSender) Sent() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.sent...)
}

// New picks the SMTP sender when host is set and the log sender otherwise.
func New(cfg SMTPConfig, log *logger.Logger) (Sender, error) {
	if cfg.Host == "" {
		log.Warn("SMTP host not configured, emails will only be logged")
		return NewLogSender(log), nil
	}
	return NewSMTPSender(cfg)
}
