package notify

import "context"

type Message struct {
	To      []string
	Subject string
	Body    string // texto plano
}

// Mailer lo implementan los adapters de adapters/mail.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}
