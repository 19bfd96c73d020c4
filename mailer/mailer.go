package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Mailer sends outbound mail over SMTP. Construct one with NewMailer
// and share it; all sends are best-effort from the caller's point of
// view unless the caller decides otherwise.
type Mailer struct {
	Host    string
	Port    string
	From    string
	Pass    string
	Timeout time.Duration
}

func NewMailer(host, port, from, pass string) *Mailer {
	return &Mailer{
		Host:    host,
		Port:    port,
		From:    from,
		Pass:    pass,
		Timeout: 10 * time.Second,
	}
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.From, to, subject, body)
	return m.deliver(to, []byte(msg))
}

// SendWithAttachment delivers a message with one binary attachment.
func (m *Mailer) SendWithAttachment(to, subject, body, filename string, attachment []byte) error {
	msg := BuildAttachmentMessage(m.From, to, subject, body, filename, attachment)
	return m.deliver(to, msg)
}

// BuildAttachmentMessage assembles a multipart MIME message with one
// base64-encoded attachment.
func BuildAttachmentMessage(from, to, subject, body, filename string, attachment []byte) []byte {
	boundary := "entrada-mime-boundary"
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary))

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: application/octet-stream\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", filename))

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// wrap base64 at 76 chars per RFC 2045
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(b.String())
}

// deliver dials with a bounded timeout; no automatic retry.
func (m *Mailer) deliver(to string, msg []byte) error {
	addr := m.Host + ":" + m.Port

	conn, err := net.DialTimeout("tcp", addr, m.Timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	conn.SetDeadline(time.Now().Add(m.Timeout))

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.Pass != "" {
		auth := smtp.PlainAuth("", m.From, m.Pass, m.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
