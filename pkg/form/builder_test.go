package form_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/form"
)

const contactYAML = `
action: /forms/contact
submit-label: Send
notify: [office@acme.test]
fields:
  name:
    label: Name
    required: true
  email:
    type: email
    label: Email
    constraints:
      - required
      - email
  topic:
    type: select
    options:
      sales: Sales
      support: Support
    constraints: [choice]
  message:
    type: textarea
    constraints:
      - name: length
        max: 10
        message: "At most {max} characters."
  agree:
    type: checkbox
    label: I agree
    required: true
steps:
  - heading: About you
    fieldsets:
      - legend: Contact details
        fields: [name, email]
  - heading: Your message
    fieldsets:
      - fields: [topic, message, agree]
`

func buildContact(t *testing.T) *form.Form {
	t.Helper()
	f, err := form.NewBuilder().BuildYAML("contact", []byte(contactYAML))
	require.NoError(t, err)
	return f
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	f := buildContact(t)
	require.Equal(t, "contact", f.Key)
	require.Equal(t, "/forms/contact", f.Action)
	require.Equal(t, "POST", f.Method)
	require.Equal(t, "Send", f.SubmitLabel)
	require.Equal(t, "Back", f.BackLabel)
	require.Equal(t, []string{"office@acme.test"}, f.Notify)
	require.Len(t, f.Steps, 2)
	require.Equal(t, "Contact details", f.Steps[0].Fieldsets[0].Legend)
	require.Equal(t, []string{"name", "email"}, f.StepFields(0))
	require.Equal(t, []string{"topic", "message", "agree"}, f.StepFields(1))
	require.Nil(t, f.StepFields(2))
	require.True(t, f.Last(1))
	require.False(t, f.HasFiles())

	require.Equal(t, form.TypeText, f.Fields["name"].Type)
	require.True(t, f.Fields["name"].Required())
	require.False(t, f.Fields["message"].Required())
	require.Equal(t, []form.Option{
		{Value: "sales", Label: "Sales"},
		{Value: "support", Label: "Support"},
	}, f.Fields["topic"].Options)
	require.Equal(t, 10, f.Fields["message"].Constraints[0].Params["max"])
}

func TestBuilder_BuildJSON(t *testing.T) {
	t.Parallel()

	f, err := form.NewBuilder().BuildJSON("upload", []byte(`{
		"fields": {
			"cv": {"type": "file", "label": "CV"},
			"colour": {"type": "radio", "options": ["red", {"value": "b", "label": "Blue"}]}
		}
	}`))
	require.NoError(t, err)
	require.Len(t, f.Steps, 1)
	require.Equal(t, []string{"colour", "cv"}, f.StepFields(0))
	require.Equal(t, []string{"cv"}, f.FileFields(0))
	require.True(t, f.HasFiles())
	require.Equal(t, "Submit", f.SubmitLabel)
	require.Equal(t, []form.Option{
		{Value: "red", Label: "red"},
		{Value: "b", Label: "Blue"},
	}, f.Fields["colour"].Options)
}

func TestBuilder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  map[string]any
		err  error
	}{
		{
			name: "no steps",
			def:  map[string]any{},
			err:  form.ErrNoSteps,
		},
		{
			name: "unknown field",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{}},
				"steps": []any{
					map[string]any{"fieldsets": []any{map[string]any{"fields": []any{"a", "b"}}}},
				},
			},
			err: form.ErrUnknownField,
		},
		{
			name: "unknown constraint",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{"constraints": []any{"postcode"}}},
			},
			err: form.ErrUnknownConstraint,
		},
		{
			name: "unknown type",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{"type": "colour-wheel"}},
			},
			err: form.ErrInvalidDefinition,
		},
		{
			name: "regex without pattern",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{"constraints": []any{"regex"}}},
			},
			err: form.ErrInvalidDefinition,
		},
		{
			name: "bad bound",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{
					"constraints": []any{map[string]any{"name": "length", "min": "many"}},
				}},
			},
			err: form.ErrInvalidDefinition,
		},
		{
			name: "steps not a list",
			def: map[string]any{
				"fields": map[string]any{"a": map[string]any{}},
				"steps":  "a",
			},
			err: form.ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := form.NewBuilder().Build("f", tt.def)
			require.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("malformed source", func(t *testing.T) {
		t.Parallel()
		_, err := form.NewBuilder().BuildJSON("f", []byte("{"))
		require.ErrorIs(t, err, form.ErrInvalidDefinition)
		_, err = form.NewBuilder().BuildYAML("f", []byte("fields: [a"))
		require.ErrorIs(t, err, form.ErrInvalidDefinition)
	})
}

func TestBuilder_CustomConstraint(t *testing.T) {
	t.Parallel()

	b := form.NewBuilder(form.WithConstraint("even", func(map[string]any) (form.Check, error) {
		return func(v any, _ *form.Field, _ map[string]any) bool {
			s, _ := v.(string)
			return len(s)%2 == 0
		}, nil
	}))
	f, err := b.Build("f", map[string]any{
		"fields": map[string]any{
			"code": map[string]any{"constraints": []any{
				map[string]any{"name": "even", "message": "Needs an even length."},
			}},
		},
	})
	require.NoError(t, err)

	errs := f.Validate(0, map[string]any{"code": "abc"})
	require.Equal(t, "Needs an even length.", errs.First("code"))
	require.True(t, f.Validate(0, map[string]any{"code": "ab"}).Empty())
}
