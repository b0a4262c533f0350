package notifications

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BearBump/CargoFlow/internal/integrations/mailer"
	"github.com/BearBump/CargoFlow/internal/metrics"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	DefaultRecipients []string
	From              string
}

// ParseRecipients splits a "," or ";" separated list and normalizes it.
func ParseRecipients(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	return NormalizeRecipients(parts)
}

// NormalizeRecipients trims, lowercases and de-duplicates keeping first-seen order.
// NormalizeRecipients(NormalizeRecipients(x)) == NormalizeRecipients(x).
func NormalizeRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, addr := range in {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

type Dispatcher struct {
	sender  mailer.Sender
	cfg     Config
	metrics *metrics.Metrics
}

func NewDispatcher(sender mailer.Sender, cfg Config, m *metrics.Metrics) *Dispatcher {
	cfg.DefaultRecipients = NormalizeRecipients(cfg.DefaultRecipients)
	if len(cfg.DefaultRecipients) == 0 {
		slog.Warn("email notifications have no default recipients configured")
	} else {
		slog.Info("email notifications enabled", "recipients", cfg.DefaultRecipients)
	}
	return &Dispatcher{sender: sender, cfg: cfg, metrics: m}
}

func (d *Dispatcher) DefaultRecipients() []string {
	return append([]string(nil), d.cfg.DefaultRecipients...)
}

// Dispatch sends subject/body to override (after normalization) or, when it
// is empty, to the configured defaults. It reports whether the transport
// accepted the message and never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, override []string, subject, body string, isHTML bool) bool {
	recipients := NormalizeRecipients(override)
	if len(recipients) == 0 {
		recipients = d.cfg.DefaultRecipients
	}
	if len(recipients) == 0 {
		slog.Debug("skip notification: no recipients", "subject", subject)
		d.metrics.ObserveNotification("skipped")
		return false
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		slog.Warn("skip notification: missing subject or body", "subject", subject)
		d.metrics.ObserveNotification("skipped")
		return false
	}

	err := d.sender.Send(ctx, mailer.Message{
		From:    d.cfg.From,
		To:      append([]string(nil), recipients...),
		Subject: subject,
		Body:    body,
		HTML:    isHTML,
	})
	if err != nil {
		slog.Error("send notification", "subject", subject, "err", err)
		d.metrics.ObserveNotification("failed")
		return false
	}

	slog.Info("notification sent", "subject", subject, "recipients", recipients)
	d.metrics.ObserveNotification("sent")
	return true
}

// Notify sends a rendered message to the default recipients.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) bool {
	return d.Dispatch(ctx, nil, msg.Subject, msg.Body, msg.IsHTML)
}
