// Package email sends alert emails over SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// AlertEmail is the data rendered into the alert template.
type AlertEmail struct {
	WorkshopName  string
	OwnerName     string
	Title         string
	Message       string
	Severity      string
	// SeverityClass selects the badge style: expired, due_today, critical, warning, info or milestone.
	SeverityClass string
	TargetDate    time.Time
	ActionURL     string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends a multipart/alternative message with a plain text fallback.
func (s *Service) SendHTMLEmail(to []string, subject, textBody, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := stripCRLF(s.config.From)
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", encodeHeader(s.config.FromName), from)
	}
	recipients := make([]string, len(to))
	for i, addr := range to {
		recipients[i] = stripCRLF(addr)
	}

	boundary := "boundary-oficinas-master"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", encodeHeader(subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", textBody)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return s.send(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// SendAlertEmail renders the alert template and sends it to a single recipient.
func (s *Service) SendAlertEmail(to string, data AlertEmail) error {
	html, err := RenderAlert(data)
	if err != nil {
		return fmt.Errorf("render alert template: %w", err)
	}
	subject := fmt.Sprintf("[%s] %s", data.WorkshopName, data.Title)
	return s.SendHTMLEmail([]string{to}, subject, data.Message, html)
}

// encodeHeader folds line breaks out of v and RFC 2047 encodes it when it is not plain ASCII.
func encodeHeader(v string) string {
	return mime.QEncoding.Encode("utf-8", stripCRLF(v))
}

func stripCRLF(v string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(v)), " ")
}

var alertTemplate = template.Must(template.New("alert").Funcs(template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
}).Parse(alertEmailTemplate))

// RenderAlert renders the HTML body for an alert email.
func RenderAlert(data AlertEmail) (string, error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
