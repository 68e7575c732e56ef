package figcms

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Mailer dispatches the transactional mail the admin flows depend on.
// A send failure must not roll back the state change that preceded it;
// callers report the failure and keep going.
type Mailer interface {
	SendPasswordReset(to, name, resetLink string) error
	SendContactNotification(form ContactForm) error
	SendAdminWelcome(to, name, loginURL string) error
}

// ContactForm is a marketing-site contact submission.
type ContactForm struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Brand  string `json:"brand"`
	Vision string `json:"vision"`
}

var resetTmpl = template.Must(template.New("reset").Parse(`<p>Hi {{.Name}},</p>
<p>You requested to reset your admin password. Click the link below to choose a new one:</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, you can ignore this email and your password will stay unchanged.</p>`))

var contactTmpl = template.Must(template.New("contact").Parse(`<h2>New contact form submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Brand:</strong> {{.Brand}}</p>
<p><strong>Vision:</strong></p>
<p>{{.Vision}}</p>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Hi {{.Name}},</p>
<p>Your admin account has been created. You can log in here:</p>
<p><a href="{{.Link}}">Admin Login</a></p>`))

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr       string // host:port
	Username   string
	Password   string
	From       string
	FromName   string
	AdminEmail string // contact notifications go here
}

func (m *SMTPMailer) SendPasswordReset(to, name, resetLink string) error {
	body, err := renderTmpl(resetTmpl, map[string]string{"Name": name, "Link": resetLink})
	if err != nil {
		return err
	}
	return m.send(to, "Reset your admin password", body)
}

func (m *SMTPMailer) SendContactNotification(form ContactForm) error {
	if m.AdminEmail == "" {
		return fmt.Errorf("mailer: no admin email configured")
	}
	body, err := renderTmpl(contactTmpl, form)
	if err != nil {
		return err
	}
	return m.send(m.AdminEmail, "New contact form submission from "+form.Name, body)
}

func (m *SMTPMailer) SendAdminWelcome(to, name, loginURL string) error {
	body, err := renderTmpl(welcomeTmpl, map[string]string{"Name": name, "Link": loginURL})
	if err != nil {
		return err
	}
	return m.send(to, "Your admin account is ready", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	from := m.From
	if m.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.FromName, m.From)
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.Username != "" {
		host := m.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}
	return smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg.String()))
}

func renderTmpl(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogMailer logs and drops mail. It stands in when SMTP is unconfigured
// so local development never needs a relay.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(to, name, resetLink string) error {
	log.Printf("figcms: mail (dropped): password reset for %s: %s", to, resetLink)
	return nil
}

func (LogMailer) SendContactNotification(form ContactForm) error {
	log.Printf("figcms: mail (dropped): contact submission from %s <%s>", form.Name, form.Email)
	return nil
}

func (LogMailer) SendAdminWelcome(to, name, loginURL string) error {
	log.Printf("figcms: mail (dropped): welcome for %s", to)
	return nil
}
