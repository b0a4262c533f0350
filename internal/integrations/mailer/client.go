package mailer

import "context"

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Sender is the mail transport capability.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
