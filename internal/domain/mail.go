package domain

import "context"

// Email is one outgoing message with plain and HTML bodies.
type Email struct {
	To      string
	Subject string
	Plain   string
	HTML    string
}

// Mailer delivers e-mails.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
