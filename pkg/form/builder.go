package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Builder turns form definitions into Forms.
type Builder struct {
	constraints map[string]ConstraintFunc
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithConstraint registers a custom constraint, replacing a built-in of the
// same name.
//
// Example:
//
//	form.WithConstraint("postcode", func(map[string]any) (form.Check, error) {
//	    return func(v any, _ *form.Field, _ map[string]any) bool {
//	        return postcodes.Valid(fmt.Sprint(v))
//	    }, nil
//	})
func WithConstraint(name string, fn ConstraintFunc) BuilderOption {
	return func(b *Builder) {
		b.constraints[name] = fn
	}
}

// NewBuilder creates a Builder with the built-in constraints.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{constraints: maps.Clone(builtins)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildJSON builds a form from a JSON definition.
func (b *Builder) BuildJSON(key string, data []byte) (*Form, error) {
	var def map[string]any
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Join(ErrInvalidDefinition, err)
	}
	return b.Build(key, def)
}

// BuildYAML builds a form from a YAML definition.
func (b *Builder) BuildYAML(key string, data []byte) (*Form, error) {
	var def map[string]any
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Join(ErrInvalidDefinition, err)
	}
	return b.Build(key, def)
}

// Build converts a definition into a Form:
//
//	action: /forms/contact
//	submit-label: Send
//	notify: [office@acme.test]
//	fields:
//	  email: {type: email, label: Email, required: true, constraints: [email]}
//	  message: {type: textarea, constraints: [{name: length, max: 2000}]}
//	steps:
//	  - heading: Contact us
//	    fieldsets:
//	      - legend: Your message
//	        fields: [email, message]
//
// A definition without steps but with fields gets a single step holding
// every field in name order.
func (b *Builder) Build(key string, def map[string]any) (*Form, error) {
	f := &Form{
		Key:         key,
		Action:      cast.ToString(def["action"]),
		Method:      strings.ToUpper(cast.ToString(def["method"])),
		SubmitLabel: firstString(def, "submit-label", "submit"),
		BackLabel:   firstString(def, "back-label", "back"),
		TargetURL:   firstString(def, "target-url", "target"),
		Notify:      cast.ToStringSlice(def["notify"]),
		Fields:      make(map[string]*Field),
	}
	if f.Method == "" {
		f.Method = "POST"
	}
	if f.SubmitLabel == "" {
		f.SubmitLabel = "Submit"
	}
	if f.BackLabel == "" {
		f.BackLabel = "Back"
	}

	fields, err := toMap(def["fields"])
	if err != nil {
		return nil, fmt.Errorf("%w: fields: %w", ErrInvalidDefinition, err)
	}
	for name, raw := range fields {
		fd, err := toMap(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrInvalidDefinition, name, err)
		}
		field, err := b.field(name, fd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		f.Fields[name] = field
	}

	steps, err := b.steps(def["steps"], f.Fields)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	f.Steps = steps
	return f, nil
}

func (b *Builder) steps(raw any, fields map[string]*Field) ([]Step, error) {
	if raw == nil {
		if len(fields) == 0 {
			return nil, nil
		}
		names := slices.Sorted(maps.Keys(fields))
		return []Step{{Fieldsets: []Fieldset{{Fields: names}}}}, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: steps must be a list", ErrInvalidDefinition)
	}
	steps := make([]Step, 0, len(list))
	for i, item := range list {
		sd, err := toMap(item)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidDefinition, i, err)
		}
		step := Step{Heading: cast.ToString(sd["heading"])}
		sets, _ := sd["fieldsets"].([]any)
		for _, rawSet := range sets {
			fsd, err := toMap(rawSet)
			if err != nil {
				return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidDefinition, i, err)
			}
			set := Fieldset{
				Legend: cast.ToString(fsd["legend"]),
				Fields: cast.ToStringSlice(fsd["fields"]),
			}
			for _, name := range set.Fields {
				if _, ok := fields[name]; !ok {
					return nil, fmt.Errorf("%w: %s (step %d)", ErrUnknownField, name, i)
				}
			}
			step.Fieldsets = append(step.Fieldsets, set)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (b *Builder) field(name string, def map[string]any) (*Field, error) {
	typ := FieldType(cast.ToString(def["type"]))
	if typ == "" {
		typ = TypeText
	}
	if !slices.Contains(fieldTypes, typ) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDefinition, typ)
	}

	f := &Field{
		Name:        name,
		Type:        typ,
		Label:       cast.ToString(def["label"]),
		Description: cast.ToString(def["description"]),
		Default:     def["default"],
		Attributes:  cast.ToStringMapString(def["attributes"]),
	}

	options, err := parseOptions(def["options"])
	if err != nil {
		return nil, err
	}
	f.Options = options

	var specs []any
	if cast.ToBool(def["required"]) {
		specs = append(specs, "required")
	}
	if list, ok := def["constraints"].([]any); ok {
		specs = append(specs, list...)
	}
	for _, spec := range specs {
		c, err := b.constraint(spec)
		if err != nil {
			return nil, err
		}
		f.Constraints = append(f.Constraints, c)
	}
	return f, nil
}

// constraint parses "name" or {name: ..., message: ..., <params>}.
func (b *Builder) constraint(spec any) (Constraint, error) {
	var c Constraint
	switch t := spec.(type) {
	case string:
		c.Name = t
	default:
		m, err := toMap(t)
		if err != nil {
			return c, fmt.Errorf("%w: constraint: %w", ErrInvalidDefinition, err)
		}
		c.Name = cast.ToString(m["name"])
		c.Message = cast.ToString(m["message"])
		for k, v := range m {
			if k == "name" || k == "message" {
				continue
			}
			if c.Params == nil {
				c.Params = make(map[string]any)
			}
			c.Params[k] = v
		}
	}

	fn, ok := b.constraints[c.Name]
	if !ok {
		return c, fmt.Errorf("%w: %q", ErrUnknownConstraint, c.Name)
	}
	check, err := fn(c.Params)
	if err != nil {
		return c, fmt.Errorf("constraint %s: %w", c.Name, err)
	}
	c.check = check
	return c, nil
}

// parseOptions accepts a list of values, a list of {value, label} maps or
// a value-to-label map (sorted by value).
func parseOptions(raw any) ([]Option, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Option, 0, len(t))
		for _, item := range t {
			if m, err := toMap(item); err == nil {
				value := cast.ToString(m["value"])
				label := cast.ToString(m["label"])
				if label == "" {
					label = value
				}
				out = append(out, Option{Value: value, Label: label})
				continue
			}
			s := cast.ToString(item)
			out = append(out, Option{Value: s, Label: s})
		}
		return out, nil
	default:
		m, err := toMap(t)
		if err != nil {
			return nil, fmt.Errorf("%w: options: %w", ErrInvalidDefinition, err)
		}
		out := make([]Option, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			out = append(out, Option{Value: k, Label: cast.ToString(m[k])})
		}
		return out, nil
	}
}

func toMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	return cast.ToStringMapE(v)
}

func firstString(def map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := cast.ToString(def[k]); s != "" {
			return s
		}
	}
	return ""
}
