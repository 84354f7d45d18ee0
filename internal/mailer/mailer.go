package mailer

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cafeDesk/internal/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends registration emails over SMTP. With no host configured it
// only logs what it would have sent.
type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendRegistrationReceived confirms that the registration reached us.
func (m *Mailer) SendRegistrationReceived(reg *model.Registration, event model.EventDetails) error {
	subject := "We received your registration for " + event.Title
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for registering for %s on %s, %s.\n\n"+
			"Price: %s\nDown payment: %s\n\n%s\n\nWe'll be in touch with the final details.",
		reg.Name, event.Title, event.EventDate, event.TimeLabel,
		event.PriceLabel, event.DownPaymentLabel, paymentLine(reg, event),
	)
	return m.deliver(reg.Email, subject, body)
}

// SendPaymentReminder asks for the down payment screenshot that never arrived.
func (m *Mailer) SendPaymentReminder(reg *model.Registration, event model.EventDetails) error {
	subject := "Reminder: down payment for " + event.Title
	body := fmt.Sprintf(
		"Hi %s,\n\nWe haven't received your payment screenshot yet.\n"+
			"%s\n\nPlease reply to this email with the screenshot to secure your spot.",
		reg.Name, event.PaymentInstruction,
	)
	return m.deliver(reg.Email, subject, body)
}

func paymentLine(reg *model.Registration, event model.EventDetails) string {
	if reg.PaymentScreenshotURL != nil {
		return "We have your payment screenshot on file."
	}
	return event.PaymentInstruction + " and send us the screenshot."
}

func (m *Mailer) deliver(to, subject, body string) error {
	if !m.Enabled() {
		m.log.Info().Str("to", to).Str("subject", subject).Msg("SMTP not configured, email skipped")
		return nil
	}

	msg := composeMessage(m.cfg.From, to, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func composeMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
