package resend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/resend/resend-go/v3"

	"github.com/sitegear/sitegear/pkg/mailer"
)

// ErrNoAPIKey is returned by New without an API key.
var ErrNoAPIKey = errors.New("resend: api key is required")

// Sender delivers emails through the Resend API.
type Sender struct {
	client *resend.Client
	from   string
}

// New creates a Resend sender. It returns ErrNoAPIKey when the key is empty.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}, nil
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    cmp.Or(email.From, s.from),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: email.Headers,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = attachments(email.Attachments)
	}
	if len(email.Tags) > 0 {
		req.Tags = tags(email.Tags)
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send to %v: %w", email.To, err)
	}
	return nil
}

func attachments(in []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(in))
	for i, a := range in {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return result
}

func tags(t mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(t))
	for name, value := range t {
		result = append(result, resend.Tag{
			Name:  name,
			Value: tagValue(value),
		})
	}
	return result
}

// tagValue renders a tag value; presence-only tags become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
