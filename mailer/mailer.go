package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer delivers account lifecycle mail.
type Mailer interface {
	SendActivation(to, username, activationURL string) error
	SendPasswordReset(to, username, resetURL string) error
}

var activationTmpl = template.Must(template.New("activation").Parse(`
<p>Hi {{.Username}},</p>
<p>Welcome to TrickDeck. Confirm your address to activate your account:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not register, you can ignore this mail.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hi {{.Username}},</p>
<p>A password reset was requested for your account. The link below is valid
for a limited time:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request a reset, you can ignore this mail.</p>
`))

type mailData struct {
	Username string
	Link     string
}

// SMTPMailer sends mail through an SMTP relay using gomail.
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

func (m *SMTPMailer) SendActivation(to, username, activationURL string) error {
	return m.send(to, "Activate your TrickDeck account", activationTmpl, mailData{Username: username, Link: activationURL})
}

func (m *SMTPMailer) SendPasswordReset(to, username, resetURL string) error {
	return m.send(to, "Reset your TrickDeck password", resetTmpl, mailData{Username: username, Link: resetURL})
}

func (m *SMTPMailer) send(to, subject string, tmpl *template.Template, data mailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render mail body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of SMTP. Used when SMTP is not
// configured, so local development never swallows activation links.
type LogMailer struct{}

func (LogMailer) SendActivation(to, username, activationURL string) error {
	log.Printf("mailer: activation mail for %s <%s>: %s", username, to, activationURL)
	return nil
}

func (LogMailer) SendPasswordReset(to, username, resetURL string) error {
	log.Printf("mailer: password reset mail for %s <%s>: %s", username, to, resetURL)
	return nil
}
