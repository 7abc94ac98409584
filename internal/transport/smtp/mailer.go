// Package smtp sends digest e-mails over SMTP with STARTTLS.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
)

// DefaultPort is the submission port with STARTTLS.
const DefaultPort = 587

const senderName = "paperdigest"

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	// From defaults to User.
	From    string
	Timeout time.Duration
	Logger  *zap.Logger
}

type sendFunc func(ctx context.Context, addr, from, to string, body []byte) error

// Mailer delivers messages through one SMTP relay.
type Mailer struct {
	addr     string
	host     string
	from     string
	user     string
	password string
	timeout  time.Duration
	send     sendFunc
	now      func() time.Time
	logger   *zap.Logger
}

// NewMailer creates an SMTP mailer.
func NewMailer(cfg *Config) *Mailer {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	m := &Mailer{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		host:     cfg.Host,
		from:     from,
		user:     cfg.User,
		password: cfg.Password,
		timeout:  timeout,
		now:      time.Now,
		logger:   cfg.Logger,
	}
	m.send = m.sendSTARTTLS
	return m
}

// Send builds and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg domain.Email) error {
	body, err := BuildMessage(m.from, msg, m.now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	if err := m.send(ctx, m.addr, m.from, msg.To, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	m.logger.Info("Mail sent", zap.String("to", msg.To), zap.Int("bytes", len(body)))
	return nil
}

func (m *Mailer) sendSTARTTLS(ctx context.Context, addr, from, to string, body []byte) error {
	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.timeout))
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.user != "" {
		if err := c.Auth(smtp.PlainAuth("", m.user, m.password, m.host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return c.Quit()
}

// BuildMessage renders msg as an RFC 5322 multipart/alternative message, plain part first.
func BuildMessage(from string, msg domain.Email, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ k, v string }{
		{"From", fmt.Sprintf("%s <%s>", senderName, from)},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", date.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary())},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.k, h.v)
	}
	buf.WriteString("\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", msg.Plain},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("create part: %w", err)
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("write part: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("close part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), nil
}
