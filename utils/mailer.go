package utils

import (
	"bytes"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML e-mail
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// NopMailer drops every message. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) Send(string, string, string) error { return nil }

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Title}}</h2>
    </div>
    <div class="content">
        <p>Hello {{.Name}},</p>
        <p>{{.Message}}</p>
    </div>
    <div class="footer">
        <p>© {{.Year}} Tasky. You receive this because you are a member of a Tasky team.</p>
    </div>
</body>
</html>`))

// RenderNotificationEmail renders the HTML body for a notification e-mail
func RenderNotificationEmail(name, title, message string) (string, error) {
	var buf bytes.Buffer
	err := notificationTemplate.Execute(&buf, map[string]interface{}{
		"Name":    name,
		"Title":   title,
		"Message": message,
		"Year":    time.Now().Year(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
