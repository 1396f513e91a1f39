// internal/mail/transport.go
//
// Outbound mail transports.
//
// Context
//   The notification endpoint renders a template and hands the result to
//   a Transport.  Production uses SES (ses.go); development defaults to
//   LogTransport, which records the send without delivering so the
//   endpoint can be exercised end-to-end offline.
//
//   Transports make exactly one attempt.  Retry is the caller's
//   business, per the endpoint contract.

package mail

import (
	"context"

	"go.uber.org/zap"
)

// Message is one outbound email job, already rendered.
type Message struct {
	To      string
	From    string // also used as Reply-To
	Subject string
	HTML    string
}

// Transport delivers a Message.  Implementations must be safe for
// concurrent use.
type Transport interface {
	Send(ctx context.Context, m Message) error
}

// LogTransport logs the send and reports success.  Default in dev.
type LogTransport struct{}

// Send implements Transport.
func (LogTransport) Send(_ context.Context, m Message) error {
	zap.S().Infow("mail transport (log only)",
		"to", m.To,
		"from", m.From,
		"subject", m.Subject,
		"html_len", len(m.HTML),
	)
	return nil
}
