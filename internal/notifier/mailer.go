// Package notifier turns job-board events into emails.
package notifier

import (
	"context"
	"log"

	"github.com/diewo77/jobboard/internal/config"
)

// Message is one HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends an email. Console and Gmail implement it.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Console logs emails instead of sending them.
type Console struct{}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Send(_ context.Context, m Message) error {
	log.Printf("[notify] mail to=%s subject=%q (%d bytes)", m.To, m.Subject, len(m.HTML))
	return nil
}

// NewMailer returns the mailer selected by cfg.Driver.
func NewMailer(ctx context.Context, cfg config.MailConfig) (Mailer, error) {
	if cfg.Driver != config.MailGmail {
		return NewConsole(), nil
	}
	return NewGmail(ctx, GmailConfig{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RefreshToken: cfg.GmailRefreshToken,
		From:         cfg.From,
	})
}
