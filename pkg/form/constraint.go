package form

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// Check reports whether value satisfies a constraint. values holds every
// value of the form, for constraints that compare fields.
type Check func(value any, field *Field, values map[string]any) bool

// ConstraintFunc builds a Check from constraint parameters. It returns an
// error when the parameters are invalid, which fails Build.
type ConstraintFunc func(params map[string]any) (Check, error)

// Constraint is a validation rule attached to a field.
type Constraint struct {
	Name    string
	Message string
	Params  map[string]any

	check Check
}

// Valid reports whether value satisfies c.
func (c Constraint) Valid(value any, field *Field, values map[string]any) bool {
	if c.check == nil {
		return true
	}
	return c.check(value, field, values)
}

// message returns the configured or default message with {param}
// placeholders filled in.
func (c Constraint) message() string {
	msg := c.Message
	if msg == "" {
		msg = defaultMessages[c.defaultKey()]
	}
	if msg == "" {
		msg = "This value is not valid."
	}
	for k, v := range c.Params {
		msg = strings.ReplaceAll(msg, "{"+k+"}", cast.ToString(v))
	}
	return msg
}

// defaultKey picks the message for one-sided bounds.
func (c Constraint) defaultKey() string {
	if c.Name != "length" && c.Name != "range" {
		return c.Name
	}
	_, lo := c.Params["min"]
	_, hi := c.Params["max"]
	switch {
	case lo && !hi:
		return c.Name + ".min"
	case hi && !lo:
		return c.Name + ".max"
	}
	return c.Name
}

var defaultMessages = map[string]string{
	"required":   "This field is required.",
	"email":      "Please enter a valid email address.",
	"length":     "Please enter between {min} and {max} characters.",
	"length.min": "Please enter at least {min} characters.",
	"length.max": "Please enter at most {max} characters.",
	"range":      "Please enter a value between {min} and {max}.",
	"range.min":  "Please enter a value of at least {min}.",
	"range.max":  "Please enter a value of at most {max}.",
	"regex":      "This value is not valid.",
	"choice":     "Please choose one of the offered options.",
	"equal-to":   "This value does not match.",
	"url":        "Please enter a valid URL.",
}

// builtins are available to every Builder.
var builtins = map[string]ConstraintFunc{
	"required": func(map[string]any) (Check, error) {
		return func(v any, _ *Field, _ map[string]any) bool { return !isEmpty(v) }, nil
	},
	"email": func(map[string]any) (Check, error) {
		return skipEmpty(func(v any, _ *Field, _ map[string]any) bool {
			s := cast.ToString(v)
			addr, err := mail.ParseAddress(s)
			return err == nil && addr.Address == s
		}), nil
	},
	"length": func(p map[string]any) (Check, error) {
		lo, hi, err := bounds(p, cast.ToIntE)
		if err != nil {
			return nil, err
		}
		return skipEmpty(func(v any, _ *Field, _ map[string]any) bool {
			n := length(v)
			return (lo == nil || n >= *lo) && (hi == nil || n <= *hi)
		}), nil
	},
	"range": func(p map[string]any) (Check, error) {
		lo, hi, err := bounds(p, cast.ToFloat64E)
		if err != nil {
			return nil, err
		}
		return skipEmpty(func(v any, _ *Field, _ map[string]any) bool {
			n, err := cast.ToFloat64E(strings.TrimSpace(cast.ToString(v)))
			return err == nil && (lo == nil || n >= *lo) && (hi == nil || n <= *hi)
		}), nil
	},
	"regex": func(p map[string]any) (Check, error) {
		pattern := cast.ToString(p["pattern"])
		if pattern == "" {
			return nil, fmt.Errorf("%w: regex needs a pattern", ErrInvalidDefinition)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
		}
		return skipEmpty(func(v any, _ *Field, _ map[string]any) bool {
			return re.MatchString(cast.ToString(v))
		}), nil
	},
	"choice": func(p map[string]any) (Check, error) {
		choices := cast.ToStringSlice(p["choices"])
		return skipEmpty(func(v any, f *Field, _ map[string]any) bool {
			allowed := choices
			if len(allowed) == 0 {
				for _, o := range f.Options {
					allowed = append(allowed, o.Value)
				}
			}
			for _, s := range stringsOf(v) {
				if !slices.Contains(allowed, s) {
					return false
				}
			}
			return true
		}), nil
	},
	"equal-to": func(p map[string]any) (Check, error) {
		other := cast.ToString(p["field"])
		if other == "" {
			return nil, fmt.Errorf("%w: equal-to needs a field", ErrInvalidDefinition)
		}
		return func(v any, _ *Field, values map[string]any) bool {
			return cast.ToString(v) == cast.ToString(values[other])
		}, nil
	},
	"url": func(map[string]any) (Check, error) {
		return skipEmpty(func(v any, _ *Field, _ map[string]any) bool {
			u, err := url.ParseRequestURI(cast.ToString(v))
			return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		}), nil
	},
}

// skipEmpty lets empty values pass; emptiness is the required
// constraint's concern.
func skipEmpty(c Check) Check {
	return func(v any, f *Field, values map[string]any) bool {
		if isEmpty(v) {
			return true
		}
		return c(v, f, values)
	}
}

func bounds[T any](p map[string]any, conv func(any) (T, error)) (*T, *T, error) {
	var lo, hi *T
	for key, dst := range map[string]**T{"min": &lo, "max": &hi} {
		raw, ok := p[key]
		if !ok {
			continue
		}
		v, err := conv(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, key, err)
		}
		*dst = &v
	}
	return lo, hi, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func length(v any) int {
	switch t := v.(type) {
	case []string:
		return len(t)
	case []any:
		return len(t)
	default:
		return utf8.RuneCountInString(cast.ToString(v))
	}
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		return cast.ToStringSlice(t)
	default:
		return []string{cast.ToString(v)}
	}
}
