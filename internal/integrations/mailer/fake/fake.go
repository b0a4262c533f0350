package fake

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BearBump/CargoFlow/internal/integrations/mailer"
)

// Sender keeps every message in memory and logs it. Used for mail mode "log"
// and in tests.
type Sender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func New() *Sender { return &Sender{} }

// FailWith makes subsequent Send calls return err (nil restores success).
func (s *Sender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Sender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	msg.To = append([]string(nil), msg.To...)
	s.sent = append(s.sent, msg)
	slog.Info("mail (log transport)", "to", msg.To, "subject", msg.Subject, "html", msg.HTML)
	return nil
}

func (s *Sender) Sent() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}
