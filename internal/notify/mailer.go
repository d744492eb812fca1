package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"storefront-backend-go/internal/models"
)

// Sender delivers one e-mail.
type Sender interface {
	Send(recipient, subject, body string) error
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<html><body>
<p>¡Gracias por tu compra!</p>
<p>Tu pedido <b>{{.OrderID}}</b> fue recibido el {{.CreatedAt}}.</p>
<p>Total: ${{printf "%.2f" .Total}} MXN</p>
<p>Te avisaremos cuando tu pedido sea enviado.</p>
</body></html>`))

// OrderMailer sends the confirmation e-mail for order.created events.
type OrderMailer struct {
	sender Sender
	logger *zap.Logger
}

// NewOrderMailer creates an OrderMailer.
func NewOrderMailer(sender Sender, logger *zap.Logger) *OrderMailer {
	return &OrderMailer{sender: sender, logger: logger}
}

// RenderConfirmation builds the subject and HTML body for event.
func RenderConfirmation(event models.OrderCreatedEvent) (string, string, error) {
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, event); err != nil {
		return "", "", fmt.Errorf("failed to render confirmation: %w", err)
	}
	return "Confirmación de pedido " + event.OrderID, buf.String(), nil
}

// Handle decodes one order.created message and mails the customer. Events without an
// e-mail address are acknowledged and skipped.
func (m *OrderMailer) Handle(_ context.Context, body []byte) error {
	var event models.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode order.created: %w", err)
	}
	if event.Email == "" {
		m.logger.Warn("order.created without e-mail, skipping", zap.String("orderID", event.OrderID))
		return nil
	}

	subject, html, err := RenderConfirmation(event)
	if err != nil {
		return err
	}
	if err := m.sender.Send(event.Email, subject, html); err != nil {
		return fmt.Errorf("failed to mail order '%s': %w", event.OrderID, err)
	}
	m.logger.Info("sent order confirmation", zap.String("orderID", event.OrderID))
	return nil
}
