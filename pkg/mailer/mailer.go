package mailer

import (
	"context"
	"errors"
	"strings"
	"text/template"

	"github.com/sitegear/sitegear/pkg/view"
)

// Renderer renders email templates; *view.Renderer satisfies it.
type Renderer interface {
	RenderTemplate(ctx context.Context, name, layout string, data map[string]any) (*view.Result, error)
}

// Mailer renders site templates into emails and hands them to a Sender.
type Mailer struct {
	sender   Sender
	renderer Renderer
	config   Config
}

// New creates a Mailer.
func New(sender Sender, renderer Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, config: cfg.withDefaults()}
}

// Message describes a templated email.
type Message struct {
	To       []string
	Template string // e.g. "emails/contact"
	Data     map[string]any

	Subject     string // overrides the template's "subject" front matter
	Layout      string // overrides Config.Layout
	From        string
	ReplyTo     string
	CC          []string
	BCC         []string
	Attachments []Attachment
	Tags        Tags
}

// Send renders msg and delivers it.
// The subject is taken from msg, then front matter, then the fallback, and
// is itself executed as a text template over msg.Data.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	if msg.Template == "" {
		return ErrNoTemplate
	}

	layout := msg.Layout
	if layout == "" {
		layout = m.config.Layout
	}
	res, err := m.renderer.RenderTemplate(ctx, msg.Template, layout, msg.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject, err := m.subject(msg, res.Metadata)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	from := msg.From
	if from == "" {
		from = m.config.From
	}

	return m.SendRaw(ctx, &Email{
		To:          msg.To,
		Subject:     subject,
		HTML:        res.HTML,
		Text:        res.Text,
		From:        from,
		ReplyTo:     msg.ReplyTo,
		CC:          msg.CC,
		BCC:         msg.BCC,
		Attachments: msg.Attachments,
		Tags:        msg.Tags,
	})
}

// SendRaw delivers a prepared email.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	switch {
	case len(email.To) == 0:
		return ErrNoRecipient
	case email.Subject == "":
		return ErrNoSubject
	case email.HTML == "":
		return ErrNoContent
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (m *Mailer) subject(msg Message, meta map[string]any) (string, error) {
	s := msg.Subject
	if s == "" {
		for _, k := range []string{"subject", "Subject"} {
			if v, ok := meta[k].(string); ok && v != "" {
				s = v
				break
			}
		}
	}
	if s == "" {
		s = m.config.FallbackSubject
	}
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	t, err := template.New("subject").Option("missingkey=zero").Parse(s)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, msg.Data); err != nil {
		return "", err
	}
	return b.String(), nil
}
