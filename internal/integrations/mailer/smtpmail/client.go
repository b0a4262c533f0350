package smtpmail

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/CargoFlow/internal/integrations/mailer"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// "mandatory" | "opportunistic" | "none"; empty means opportunistic.
	TLSPolicy string
	Timeout   time.Duration
}

type Client struct {
	cfg Config
}

func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if _, err := tlsPolicy(cfg.TLSPolicy); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

func tlsPolicy(s string) (mail.TLSPolicy, error) {
	switch strings.ToLower(s) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	case "none":
		return mail.NoTLS, nil
	}
	return mail.TLSOpportunistic, errors.Errorf("unknown tls policy %q", s)
}

func (c *Client) options() []mail.Option {
	policy, _ := tlsPolicy(c.cfg.TLSPolicy)
	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(c.cfg.Timeout),
	}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}
	return opts
}

func (c *Client) Send(ctx context.Context, msg mailer.Message) error {
	if msg.From == "" && strings.Contains(c.cfg.Username, "@") {
		msg.From = c.cfg.Username
	}
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(c.cfg.Host, c.options()...)
	if err != nil {
		return errors.Wrap(err, "smtp client")
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "smtp send")
	}
	return nil
}

func buildMessage(msg mailer.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if msg.From != "" {
		if err := m.From(msg.From); err != nil {
			return nil, errors.Wrap(err, "from address")
		}
	}
	if err := m.To(msg.To...); err != nil {
		return nil, errors.Wrap(err, "to address")
	}
	m.Subject(msg.Subject)

	contentType := mail.TypeTextPlain
	if msg.HTML {
		contentType = mail.TypeTextHTML
	}
	m.SetBodyString(contentType, msg.Body)
	return m, nil
}
