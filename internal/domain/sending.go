package domain

import (
	"strconv"
	"time"
)

// TransportType identifies the mail transport used for delivery.
type TransportType string

const (
	TransportSMTP TransportType = "smtp"
	TransportSES  TransportType = "ses"
)

// SmtpConfig holds the connection parameters for one SMTP session. Exactly
// one config is active at a time; it is passed explicitly per dispatch call,
// never read from ambient process state.
//
// Secure=true means implicit TLS on connect (typically port 465);
// Secure=false means plaintext with opportunistic STARTTLS (typically 587).
type SmtpConfig struct {
	Host   string `json:"host" db:"host"`
	Port   int    `json:"port" db:"port"`
	Secure bool   `json:"secure" db:"secure"`
	User   string `json:"user" db:"username"`
	Pass   string `json:"pass,omitempty" db:"password"`
}

// Addr returns the host:port dial address.
func (c SmtpConfig) Addr() string {
	if c.Port <= 0 {
		if c.Secure {
			return c.Host + ":465"
		}
		return c.Host + ":587"
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SESConfig holds AWS SES credentials for the alternative transport.
type SESConfig struct {
	AccessKey string `json:"accessKey" db:"access_key"`
	SecretKey string `json:"secretKey,omitempty" db:"secret_key"`
	Region    string `json:"region" db:"region"`
	FromEmail string `json:"fromEmail" db:"from_email"`
}

// SendSettings selects and configures the outgoing transport for a
// dispatch. Handed to the dispatch call explicitly; the stored settings row
// is only a default the caller may start from.
type SendSettings struct {
	Transport TransportType `json:"transport"`
	SMTP      SmtpConfig    `json:"smtp"`
	SES       SESConfig     `json:"ses"`
}

// Redacted returns a copy with secrets blanked, for API responses.
func (s SendSettings) Redacted() SendSettings {
	s.SMTP.Pass = ""
	s.SES.SecretKey = ""
	return s
}

// FromEmail returns the envelope sender for the selected transport.
func (s SendSettings) FromEmail() string {
	if s.Transport == TransportSES {
		return s.SES.FromEmail
	}
	return s.SMTP.User
}

// EmailMessage is the fully-resolved message handed to a transport adapter.
// By the time a message reaches this struct, all token substitution is
// complete; the body is interpreted as HTML.
type EmailMessage struct {
	ID          string        `json:"id"`
	CampaignID  string        `json:"campaign_id"`
	ContactID   string        `json:"contact_id"`
	Email       string        `json:"email"`
	FromName    string        `json:"from_name"`
	FromEmail   string        `json:"from_email"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"html_content"`
	Transport   TransportType `json:"transport"`
}

// SendResult is returned by a transport adapter after attempting delivery.
type SendResult struct {
	Success   bool          `json:"success"`
	MessageID string        `json:"message_id"`
	Transport TransportType `json:"transport"`
	SentAt    time.Time     `json:"sent_at"`
}
