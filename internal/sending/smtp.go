package sending

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/pkg/logger"
)

// SMTPSender delivers mail through a user-supplied SMTP server. The config
// is passed in at construction, never read from the environment: each
// dispatch builds its own sender from the settings the caller chose.
//
// The first Send dials and the session is reused for the rest of the batch.
// An empty batch therefore never opens a connection.
type SMTPSender struct {
	cfg    domain.SmtpConfig
	conn   net.Conn
	client *smtp.Client
}

// NewSMTPSender creates a sender for the given server config. No network
// activity happens until the first Send.
func NewSMTPSender(cfg domain.SmtpConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message over the shared session, dialing on first use.
// A failed transaction tears the session down so the next contact gets a
// fresh connection.
func (s *SMTPSender) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.SendResult, error) {
	if s.cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host not configured")
	}

	client, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	// smtp.Client has no context plumbing, so bound the transaction with a
	// connection deadline derived from the caller's context.
	if dl, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(dl)
		defer s.conn.SetDeadline(time.Time{})
	}

	messageID := fmt.Sprintf("%s@studio", uuid.New().String())
	raw := buildMessage(msg, messageID)

	if err := s.transact(client, msg.FromEmail, msg.Email, raw); err != nil {
		s.teardown()
		return nil, err
	}

	log.Printf("[SMTP] Sent to %s (id: %s)", logger.RedactEmail(msg.Email), messageID)
	return &domain.SendResult{
		Success:   true,
		MessageID: messageID,
		Transport: domain.TransportSMTP,
		SentAt:    time.Now(),
	}, nil
}

func (s *SMTPSender) transact(client *smtp.Client, from, to string, raw []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("DATA close: %w", err)
	}
	return nil
}

// session returns the live SMTP session, dialing and authenticating on
// first use. Secure configs use implicit TLS (typically port 465); plain
// configs attempt opportunistic STARTTLS and continue without TLS if the
// server refuses, matching how most submission servers on 587 behave.
func (s *SMTPSender) session(ctx context.Context) (*smtp.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	addr := s.cfg.Addr()

	var conn net.Conn
	var err error
	if s.cfg.Secure {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}

	if !s.cfg.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsCfg := &tls.Config{ServerName: s.cfg.Host}
			if tlsErr := client.StartTLS(tlsCfg); tlsErr != nil {
				log.Printf("[SMTP] STARTTLS failed (continuing without TLS): %v", tlsErr)
			}
		}
	}

	if s.cfg.User != "" && s.cfg.Pass != "" {
		if authErr := client.Auth(&smtpPlainAuth{user: s.cfg.User, pass: s.cfg.Pass}); authErr != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP auth: %w", authErr)
		}
	}

	s.conn = conn
	s.client = client
	return client, nil
}

// Close quits the session if one was opened. Safe to call when no Send
// ever happened.
func (s *SMTPSender) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Quit()
	if err != nil {
		s.client.Close()
	}
	s.client = nil
	s.conn = nil
	return err
}

func (s *SMTPSender) teardown() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
		s.conn = nil
	}
}

// buildMessage assembles the RFC 5322 payload. Campaign bodies are authored
// as HTML, so the message carries a single text/html part.
func buildMessage(msg *domain.EmailMessage, messageID string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", msg.FromName, msg.FromEmail))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.Email))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", messageID))
	buf.WriteString(fmt.Sprintf("X-Campaign-ID: %s\r\n", msg.CampaignID))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLContent)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// smtpPlainAuth implements smtp.Auth without the TLS requirement stdlib's
// PlainAuth enforces. Local relays and some providers authenticate on
// plaintext submission ports.
type smtpPlainAuth struct {
	user, pass string
}

func (a *smtpPlainAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	resp := []byte("\x00" + a.user + "\x00" + a.pass)
	return "PLAIN", resp, nil
}

func (a *smtpPlainAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	return nil, nil
}
