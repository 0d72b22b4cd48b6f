package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/webyarden/webyarden-backend/pkg/config"
)

type fakeClient struct {
	sent   []*mail.SGMailV3
	status int
}

func (f *fakeClient) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return &rest.Response{StatusCode: f.status, Body: "bad request"}, nil
}

func newTestSender(status int) (*SendGrid, *fakeClient) {
	client := &fakeClient{status: status}
	return &SendGrid{
		client: client,
		from:   mail.NewEmail("Web Yarden", "no-reply@webyarden.com"),
		to:     mail.NewEmail("Web Yarden", "hello@webyarden.com"),
	}, client
}

func TestNotifyContactBuildsMessage(t *testing.T) {
	sender, client := newTestSender(202)
	err := sender.NotifyContact(context.Background(), ContactNotification{
		Name:    "Dana Levi",
		Email:   "dana@example.com",
		Subject: "Refonte du site",
		Budget:  "medium",
		Message: "<b>Bonjour</b>",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(client.sent))
	}

	msg := client.sent[0]
	if msg.Subject != "Nouveau contact: Refonte du site" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.ReplyTo == nil || msg.ReplyTo.Address != "dana@example.com" {
		t.Fatalf("expected reply-to visitor, got %+v", msg.ReplyTo)
	}
	var plain, html string
	for _, c := range msg.Content {
		switch c.Type {
		case "text/plain":
			plain = c.Value
		case "text/html":
			html = c.Value
		}
	}
	if !strings.Contains(plain, "Budget: medium") || strings.Contains(plain, "Téléphone") {
		t.Fatalf("unexpected plain body %q", plain)
	}
	if strings.Contains(html, "<b>Bonjour</b>") || !strings.Contains(html, "&lt;b&gt;Bonjour") {
		t.Fatalf("html body must escape visitor input: %q", html)
	}
}

func TestNotifyContactReportsAPIError(t *testing.T) {
	sender, _ := newTestSender(400)
	if err := sender.NotifyContact(context.Background(), ContactNotification{Name: "a", Email: "a@b.co"}); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestNewWithoutConfigIsNoop(t *testing.T) {
	n := New(config.SendgridConfig{})
	if _, ok := n.(Noop); !ok {
		t.Fatalf("expected Noop notifier, got %T", n)
	}
	if err := n.NotifyContact(context.Background(), ContactNotification{}); err != nil {
		t.Fatalf("noop should never fail: %v", err)
	}
	if _, ok := New(config.SendgridConfig{APIKey: "key", NotifyTo: "hello@webyarden.com"}).(*SendGrid); !ok {
		t.Fatal("expected SendGrid notifier when configured")
	}
}
