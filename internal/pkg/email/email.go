// internal/pkg/email/email.go
package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Message represents an outbound email
type Message struct {
	To          []string
	Subject     string
	HTMLContent string
}

// Sender delivers messages through a configured provider. The core treats
// email as a narrow external collaborator: delivery failures are logged by
// callers, never propagated to the request.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender selects a sender implementation from configuration
func NewSender(cfg *config.Config, logger *logrus.Logger) Sender {
	switch cfg.External.Email.Provider {
	case "api":
		return NewAPISender(cfg)
	default:
		return &NoopSender{logger: logger}
	}
}

// NoopSender logs and drops messages. Used when no provider is configured
// and in tests.
type NoopSender struct {
	logger *logrus.Logger
}

// Send implements Sender
func (s *NoopSender) Send(_ context.Context, msg *Message) error {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Debug("email delivery skipped: no provider configured")
	}
	return nil
}

// OrderConfirmation builds the order confirmation message
func OrderConfirmation(to, orderNumber string, total float64, itemCount int) *Message {
	return &Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Order %s confirmed", orderNumber),
		HTMLContent: fmt.Sprintf(
			"<h2>Thanks for your order!</h2><p>Order <strong>%s</strong> with %d item(s) totalling %.2f has been placed and is now processing.</p>",
			orderNumber, itemCount, total),
	}
}
