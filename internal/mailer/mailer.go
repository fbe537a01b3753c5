package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"net/textproto"

	"mime/multipart"

	"go.uber.org/zap"
)

// Config describes the relay and the fixed sender identity.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Mailer delivers confirmation documents through an authenticated SMTP relay
// on the submission port. The connection is upgraded with STARTTLS when the
// relay advertises it.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs a Mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send delivers one plain-text message with a single PDF attachment. Any
// transport or authentication failure is returned as-is; there are no
// retries.
func (m *Mailer) Send(to, subject, body, filename string, attachment []byte) error {
	msg, err := buildMessage(m.cfg.From, m.cfg.FromName, to, subject, body, filename, attachment)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send via %s: %w", addr, err)
	}

	m.logger.Info("confirmation email sent",
		zap.String("to", to),
		zap.String("attachment", filename),
	)
	return nil
}

func buildMessage(from, fromName, to, subject, body, filename string, attachment []byte) ([]byte, error) {
	buf := &bytes.Buffer{}

	sender := from
	if fromName != "" {
		sender = fmt.Sprintf("%s <%s>", fromName, from)
	}
	fmt.Fprintf(buf, "From: %s\r\n", sender)
	fmt.Fprintf(buf, "To: %s\r\n", to)
	fmt.Fprintf(buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	mw := multipart.NewWriter(buf)
	fmt.Fprintf(buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	attPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := attPart.Write(wrapBase64(attachment)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapBase64 encodes and folds the payload at 76 columns per RFC 2045.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	out := &bytes.Buffer{}
	for len(encoded) > 76 {
		out.WriteString(encoded[:76])
		out.WriteString("\r\n")
		encoded = encoded[76:]
	}
	out.WriteString(encoded)
	return out.Bytes()
}
