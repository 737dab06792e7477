// Package notify delivers push notifications about visitor activity.
package notify

import (
	"fmt"

	"github.com/gregdel/pushover"

	"avatar-agent/internal/logger"
)

// Notifier sends a short message to the portfolio owner. Failures are the
// caller's business to ignore: a lost notification must never break a chat.
type Notifier interface {
	Send(message string) error
}

// Pushover sends messages through the Pushover API.
type Pushover struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

// NewPushover builds a Pushover notifier from API token and user key.
func NewPushover(token, user string) *Pushover {
	return &Pushover{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(user),
	}
}

func (p *Pushover) Send(message string) error {
	_, err := p.app.SendMessage(pushover.NewMessage(message), p.recipient)
	if err != nil {
		return fmt.Errorf("failed to send pushover message: %w", err)
	}
	return nil
}

// Nop is used when Pushover credentials are not configured; it only logs.
type Nop struct{}

func (Nop) Send(message string) error {
	logger.Info().Str("message", message).Msg("notification (pushover not configured)")
	return nil
}

// FromCredentials picks the Pushover notifier when both credentials are set,
// the logging fallback otherwise.
func FromCredentials(token, user string) Notifier {
	if token == "" || user == "" {
		logger.Warn().Msg("PUSHOVER_TOKEN/PUSHOVER_USER not set, notifications disabled")
		return Nop{}
	}
	return NewPushover(token, user)
}
