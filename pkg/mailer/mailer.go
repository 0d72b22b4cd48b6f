package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/webyarden/webyarden-backend/pkg/config"
)

// ContactNotification is the content of a new contact form message.
type ContactNotification struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Subject string
	Service string
	Budget  string
	Message string
}

// Notifier delivers back-office notifications.
type Notifier interface {
	NotifyContact(ctx context.Context, n ContactNotification) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid delivers notifications through the SendGrid v3 API.
type SendGrid struct {
	client sendClient
	from   *mail.Email
	to     *mail.Email
}

// New returns a SendGrid notifier, or a Noop when SendGrid is not configured.
func New(cfg config.SendgridConfig) Notifier {
	if !cfg.Enabled() {
		return Noop{}
	}
	return &SendGrid{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail("Web Yarden", cfg.DefaultFrom),
		to:     mail.NewEmail("Web Yarden", cfg.NotifyTo),
	}
}

var contactHTML = template.Must(template.New("contact").Parse(`<h2>Nouveau message de {{.Name}}</h2>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Téléphone:</strong> {{.Phone}}</p>{{end}}
{{if .Company}}<p><strong>Entreprise:</strong> {{.Company}}</p>{{end}}
{{if .Service}}<p><strong>Service:</strong> {{.Service}}</p>{{end}}
{{if .Budget}}<p><strong>Budget:</strong> {{.Budget}}</p>{{end}}
<p><strong>Sujet:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>`))

// NotifyContact emails the configured inbox with the visitor as reply-to.
func (s *SendGrid) NotifyContact(ctx context.Context, n ContactNotification) error {
	var body bytes.Buffer
	if err := contactHTML.Execute(&body, n); err != nil {
		return fmt.Errorf("render contact email: %w", err)
	}

	msg := mail.NewSingleEmail(
		s.from,
		fmt.Sprintf("Nouveau contact: %s", n.Subject),
		s.to,
		plainContact(n),
		body.String(),
	)
	msg.SetReplyTo(mail.NewEmail(n.Name, n.Email))

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func plainContact(n ContactNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nom: %s\nEmail: %s\n", n.Name, n.Email)
	for _, field := range []struct{ label, value string }{
		{"Téléphone", n.Phone},
		{"Entreprise", n.Company},
		{"Service", n.Service},
		{"Budget", n.Budget},
	} {
		if field.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field.label, field.value)
		}
	}
	fmt.Fprintf(&b, "Sujet: %s\n\n%s\n", n.Subject, n.Message)
	return b.String()
}

// Noop drops every notification.
type Noop struct{}

func (Noop) NotifyContact(context.Context, ContactNotification) error { return nil }
