package sending

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailcraft/studio/internal/domain"
)

func TestBuildMessageHeaders(t *testing.T) {
	msg := &domain.EmailMessage{
		CampaignID:  "camp-1",
		Email:       "jane@example.com",
		FromName:    "EmailCraft Studio",
		FromEmail:   "account@smtp.example",
		Subject:     "Hello Jane",
		HTMLContent: "<p>Hi</p>",
	}

	raw := string(buildMessage(msg, "abc-123@studio"))

	header, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "message must separate headers from body with a blank line")

	assert.Contains(t, header, "From: EmailCraft Studio <account@smtp.example>\r\n")
	assert.Contains(t, header, "To: jane@example.com\r\n")
	assert.Contains(t, header, "Subject: Hello Jane\r\n")
	assert.Contains(t, header, "Message-ID: <abc-123@studio>\r\n")
	assert.Contains(t, header, "X-Campaign-ID: camp-1\r\n")
	assert.Contains(t, header, "MIME-Version: 1.0\r\n")
	assert.Contains(t, header, "Content-Type: text/html; charset=UTF-8")
	assert.Equal(t, "<p>Hi</p>\r\n", body)
}

func TestSmtpConfigAddrDefaults(t *testing.T) {
	assert.Equal(t, "mail.example.com:465", domain.SmtpConfig{Host: "mail.example.com", Secure: true}.Addr())
	assert.Equal(t, "mail.example.com:587", domain.SmtpConfig{Host: "mail.example.com"}.Addr())
	assert.Equal(t, "mail.example.com:2525", domain.SmtpConfig{Host: "mail.example.com", Port: 2525}.Addr())
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	s := NewSMTPSender(domain.SmtpConfig{})
	_, err := s.Send(context.Background(),&domain.EmailMessage{Email: "a@example.com"})
	assert.ErrorContains(t, err, "SMTP host not configured")
}

func TestSMTPSenderCloseWithoutSession(t *testing.T) {
	s := NewSMTPSender(domain.SmtpConfig{Host: "mail.example.com"})
	assert.NoError(t, s.Close())
}

func TestPlainAuthResponse(t *testing.T) {
	auth := &smtpPlainAuth{user: "account", pass: "secret"}

	mech, resp, err := auth.Start(nil)
	require.NoError(t, err)
	assert.Equal(t, "PLAIN", mech)
	assert.Equal(t, []byte("\x00account\x00secret"), resp)

	next, err := auth.Next([]byte("ignored"), true)
	require.NoError(t, err)
	assert.Nil(t, next)
}
