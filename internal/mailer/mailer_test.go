package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"

	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
)

type captureSender struct {
	msgs []*mail.Msg
	err  error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        587,
		FromName:    "IVD Group",
		FromAddress: "noreply@ivdgroup.example",
	}
}

func ordersConfig() config.OrdersConfig {
	return config.OrdersConfig{OperationsEmail: "sales@ivdgroup.example"}
}

func renderMessage(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("render message: %v", err)
	}
	return buf.String()
}

func TestSendWelcome(t *testing.T) {
	sender := &captureSender{}
	m := newWithSender(smtpConfig(), ordersConfig(), nil, sender)

	if err := m.SendWelcome(context.Background(), "buyer@example.com", "Buyer"); err != nil {
		t.Fatalf("send welcome: %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.msgs))
	}

	rendered := renderMessage(t, sender.msgs[0])
	if !strings.Contains(rendered, "To: buyer@example.com") {
		t.Fatalf("missing recipient:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Subject: Welcome to IVD Group") {
		t.Fatalf("missing subject:\n%s", rendered)
	}
}

func TestSendMagicLinkCarriesLink(t *testing.T) {
	sender := &captureSender{}
	m := newWithSender(smtpConfig(), ordersConfig(), nil, sender)

	link := "http://localhost:3000/api/auth/magic-link/verify?token=abc"
	if err := m.SendMagicLink(context.Background(), "buyer@example.com", "Buyer", link); err != nil {
		t.Fatalf("send magic link: %v", err)
	}

	rendered := renderMessage(t, sender.msgs[0])
	if !strings.Contains(rendered, "magic-link/verify?token=3Dabc") && !strings.Contains(rendered, link) {
		// quoted-printable encodes '=' as '=3D'
		t.Fatalf("link missing from body:\n%s", rendered)
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &captureSender{}
	m := newWithSender(smtpConfig(), ordersConfig(), nil, sender)

	order := &models.Order{
		OrderNumber:  "ORD-1700000000000-AB12C",
		CustomerName: "Lab Manager",
		Email:        "lab@example.com",
		Total:        decimal.NewFromFloat(70110),
		Items: []models.OrderItem{
			{SKU: "HEM-100", Name: "Hematology Analyzer", Quantity: 1, UnitPrice: decimal.NewFromInt(45000)},
		},
	}

	if err := m.SendOrderConfirmation(context.Background(), order, []byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	msg := sender.msgs[0]
	recipients, err := msg.GetRecipients()
	if err != nil {
		t.Fatalf("get recipients: %v", err)
	}
	joined := strings.Join(recipients, ",")
	if !strings.Contains(joined, "lab@example.com") || !strings.Contains(joined, "sales@ivdgroup.example") {
		t.Fatalf("expected customer and ops copy, got %v", recipients)
	}

	rendered := renderMessage(t, msg)
	if !strings.Contains(rendered, "Subject: Order confirmation ORD-1700000000000-AB12C") {
		t.Fatalf("missing subject:\n%s", rendered)
	}
	if !strings.Contains(rendered, invoiceFilename) {
		t.Fatalf("missing pdf attachment:\n%s", rendered)
	}
}

func TestSendOrderConfirmationWithoutPDF(t *testing.T) {
	sender := &captureSender{}
	m := newWithSender(smtpConfig(), ordersConfig(), nil, sender)

	order := &models.Order{
		OrderNumber: "ORD-1",
		Email:       "lab@example.com",
		Total:       decimal.NewFromInt(100),
	}
	if err := m.SendOrderConfirmation(context.Background(), order, nil); err != nil {
		t.Fatalf("send confirmation without pdf: %v", err)
	}
	rendered := renderMessage(t, sender.msgs[0])
	if strings.Contains(rendered, invoiceFilename) {
		t.Fatal("expected no attachment")
	}
}

func TestDisabledMailerDropsSends(t *testing.T) {
	m, err := New(config.SMTPConfig{}, ordersConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if m.Enabled() {
		t.Fatal("expected mailer disabled without smtp config")
	}
	if err := m.SendWelcome(context.Background(), "buyer@example.com", "Buyer"); err != nil {
		t.Fatalf("disabled send should be a no-op, got %v", err)
	}
}
