// Package mailer sends transactional email over SMTP. Every send is
// best-effort from the caller's point of view: order and signup flows log
// failures and move on.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
)

const invoiceFilename = "order-confirmation.pdf"

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer builds and sends the storefront's transactional messages.
type Mailer struct {
	cfg      config.SMTPConfig
	opsEmail string
	logg     *logger.Logger
	sender   smtpSender
}

// New connects the mailer to the configured SMTP relay. When SMTP is not
// configured the mailer is disabled and every send becomes a logged no-op,
// which keeps dev environments working without a relay.
func New(cfg config.SMTPConfig, ordersCfg config.OrdersConfig, logg *logger.Logger) (*Mailer, error) {
	m := &Mailer{cfg: cfg, opsEmail: ordersCfg.OperationsEmail, logg: logg}
	if !cfg.Enabled() {
		return m, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	m.sender = client
	return m, nil
}

func newWithSender(cfg config.SMTPConfig, ordersCfg config.OrdersConfig, logg *logger.Logger, sender smtpSender) *Mailer {
	return &Mailer{cfg: cfg, opsEmail: ordersCfg.OperationsEmail, logg: logg, sender: sender}
}

// Enabled reports whether sends reach a relay.
func (m *Mailer) Enabled() bool {
	return m.sender != nil
}

// SendWelcome greets a new account.
func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	msg, err := m.newMessage(to)
	if err != nil {
		return err
	}
	msg.Subject("Welcome to IVD Group")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your IVD Group account is ready. Browse our catalog of medical and "+
			"laboratory equipment and order directly online.\n\n"+
			"Best regards,\nIVD Group",
		displayName(name)))
	return m.send(ctx, msg)
}

// SendMagicLink mails a single-use sign-in link.
func (m *Mailer) SendMagicLink(ctx context.Context, to, name, link string) error {
	msg, err := m.newMessage(to)
	if err != nil {
		return err
	}
	msg.Subject("Your IVD Group sign-in link")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\n\n"+
			"Use the link below to sign in. It works once and expires soon.\n\n"+
			"%s\n\n"+
			"If you did not request this link you can ignore this email.\n\n"+
			"Best regards,\nIVD Group",
		displayName(name), link))
	return m.send(ctx, msg)
}

// SendOrderConfirmation mails the customer with the operations address in
// copy. The PDF is attached when present; a missing PDF never blocks the
// confirmation itself.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, order *models.Order, pdf []byte) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	msg, err := m.newMessage(order.Email)
	if err != nil {
		return err
	}
	if m.opsEmail != "" {
		if err := msg.Bcc(m.opsEmail); err != nil {
			return fmt.Errorf("ops recipient: %w", err)
		}
	}

	msg.Subject(fmt.Sprintf("Order confirmation %s", order.OrderNumber))
	msg.SetBodyString(mail.TypeTextPlain, orderBody(order))
	if len(pdf) > 0 {
		if err := msg.AttachReader(invoiceFilename, bytes.NewReader(pdf)); err != nil {
			return fmt.Errorf("attach invoice: %w", err)
		}
	}
	return m.send(ctx, msg)
}

func (m *Mailer) newMessage(to string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.Msg) error {
	if m.sender == nil {
		if m.logg != nil {
			m.logg.Warn(ctx, "smtp disabled, dropping outbound email")
		}
		return nil
	}
	return m.sender.DialAndSendWithContext(ctx, msg)
}

func orderBody(order *models.Order) string {
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Thank you for your order %s. We received it and our sales team will "+
			"contact you shortly with payment details.\n\n",
		displayName(order.CustomerName), order.OrderNumber)
	for _, item := range order.Items {
		body += fmt.Sprintf("  %s x%d  %s\n", item.Name, item.Quantity, item.SKU)
	}
	body += fmt.Sprintf(
		"\nOrder total: %s EUR (incl. 23%% VAT)\n\n"+
			"Best regards,\nIVD Group",
		order.Total.StringFixed(2))
	return body
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
