package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/form"
	"github.com/sitegear/sitegear/pkg/mailer"
)

// TaskNotify is the name of the notification task.
const TaskNotify = "forms:notify"

// NotifyPayload identifies the submission to send.
type NotifyPayload struct {
	Submission uuid.UUID `json:"submission"`
}

// dispatch queues the notification, or sends it in place when the engine
// has no queue.
func (m *Module) dispatch(ctx context.Context, f *form.Form, sub *Submission) error {
	if len(f.Notify) == 0 {
		return nil
	}
	payload := NotifyPayload{Submission: sub.ID}
	err := m.host.Enqueue(ctx, TaskNotify, payload)
	if errors.Is(err, sitegear.ErrNoQueue) {
		return m.notify(ctx, payload)
	}
	return err
}

// notify emails a submission to the form's notify addresses.
func (m *Module) notify(ctx context.Context, p NotifyPayload) error {
	sub, err := m.submissions.Get(ctx, p.Submission)
	if err != nil {
		return err
	}
	f, ok := m.Form(sub.Form)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, sub.Form)
	}
	if m.host == nil || m.host.Mailer == nil {
		if m.host != nil {
			m.host.Logger.WarnContext(ctx, "no mailer configured; submission not sent", "submission", sub.ID.String())
		}
		return nil
	}

	return m.host.Mailer.Send(ctx, mailer.Message{
		To:       f.Notify,
		Template: m.template,
		Data: map[string]any{
			"form":       f.Key,
			"submission": sub.ID.String(),
			"created":    sub.CreatedAt,
			"fields":     m.fields(ctx, f, sub.Values),
		},
		Tags: mailer.SimpleTags("form:" + f.Key),
	})
}

// Field is a labelled value of a submission as shown in emails.
type Field struct {
	Name  string
	Label string
	Value string
}

// fields lists values in form order. Uploads are replaced by their URL.
func (m *Module) fields(ctx context.Context, f *form.Form, values map[string]any) []Field {
	var out []Field
	for step := range f.Steps {
		for _, name := range f.StepFields(step) {
			field := f.Fields[name]
			label := field.Label
			if label == "" {
				label = name
			}
			value := display(values[name])
			if field.Type == form.TypeFile && value != "" && m.host.Storage != nil {
				if u, err := m.host.Storage.URL(ctx, value); err == nil {
					value = u
				}
			}
			out = append(out, Field{Name: name, Label: label, Value: value})
		}
	}
	return out
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case []any, []string:
		return strings.Join(cast.ToStringSlice(t), ", ")
	default:
		return cast.ToString(t)
	}
}
