package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, email *Email) error

func (f SenderFunc) Send(ctx context.Context, email *Email) error { return f(ctx, email) }

// LogSender writes emails to the log instead of delivering them.
// Sites without a mail provider use it in development.
func LogSender(log *slog.Logger) Sender {
	return SenderFunc(func(ctx context.Context, e *Email) error {
		log.InfoContext(ctx, "email not delivered, no provider configured",
			slog.Any("to", e.To),
			slog.String("subject", e.Subject),
			slog.Int("html_bytes", len(e.HTML)),
			slog.Int("attachments", len(e.Attachments)),
		)
		return nil
	})
}
