package auth

import (
	"context"
	"log/slog"
)

// Sender delivers a sign-in link to an email address.
type Sender interface {
	Send(ctx context.Context, email, link string) error
}

// LogSender writes links to the log instead of mailing them.
// It is what the server uses until an SMTP sender exists.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, email, link string) error {
	slog.InfoContext(ctx, "Magic link issued", "email", email, "link", link)
	return nil
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, email, link string) error

func (f SenderFunc) Send(ctx context.Context, email, link string) error {
	return f(ctx, email, link)
}
