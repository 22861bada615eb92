package form

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/cookie"
)

// MsgTooLarge is the field error given when entered values no longer fit
// in the state cookie.
const MsgTooLarge = "This entry is too long. Please shorten it."

// State is the progress of one visitor through a multi-step form.
type State struct {
	Step int `json:"step"`
	// Furthest is the last step the visitor may jump to.
	Furthest int            `json:"furthest"`
	Values   map[string]any `json:"values,omitempty"`
	// Ref keys the values in the processor's value cache, if it has one.
	Ref string `json:"ref,omitempty"`
}

// CookieStore persists state between requests. *cookie.Manager satisfies
// it; the store must encrypt values, since state holds visitor input.
type CookieStore interface {
	Value(r *http.Request, name string, dest any) error
	SetValue(w http.ResponseWriter, name string, v any, maxAge int) error
	Delete(w http.ResponseWriter, name string)
}

// Result is the outcome of Submit.
type Result struct {
	State  State
	Errors Errors
	// Complete is set when the last step validated. Values then holds the
	// whole submission and the stored state is gone.
	Complete bool
	Values   map[string]any
}

// Processor drives a form through its steps.
type Processor struct {
	form    *Form
	cookies CookieStore
	name    string
	maxAge  int
	values  cache.Cache[map[string]any]
	ttl     time.Duration
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMaxAge sets the state cookie lifetime in seconds. 0 (default) keeps
// it for the browser session.
func WithMaxAge(seconds int) ProcessorOption {
	return func(p *Processor) { p.maxAge = seconds }
}

// WithCookieName overrides the default "form_<key>" cookie name.
func WithCookieName(name string) ProcessorOption {
	return func(p *Processor) { p.name = name }
}

// WithValueCache keeps entered values in c for ttl, so the cookie only
// carries the step and a reference. Without it values travel in the cookie
// and are limited by its size.
func WithValueCache(c cache.Cache[map[string]any], ttl time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.values = c
		p.ttl = ttl
	}
}

// NewProcessor creates a Processor for f.
func NewProcessor(f *Form, cookies CookieStore, opts ...ProcessorOption) *Processor {
	p := &Processor{form: f, cookies: cookies, name: "form_" + f.Key}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Form returns the processed form.
func (p *Processor) Form() *Form { return p.form }

// Current returns the stored state, or a fresh one when there is none or
// it cannot be read. State whose cached values expired starts over.
func (p *Processor) Current(r *http.Request) State {
	var s State
	if err := p.cookies.Value(r, p.name, &s); err != nil {
		return State{}
	}
	if s.Ref != "" && p.values != nil {
		values, err := p.values.Get(r.Context(), p.valueKey(s.Ref))
		if err != nil {
			return State{}
		}
		s.Values = maps.Clone(values)
	}
	last := len(p.form.Steps) - 1
	s.Step = min(max(s.Step, 0), last)
	s.Furthest = min(max(s.Furthest, s.Step), last)
	return s
}

// Submit validates values for step. Valid input is stored and the state
// advances to the next step, or completes on the last one. Invalid input is
// not stored; the returned state carries it for re-display.
func (p *Processor) Submit(w http.ResponseWriter, r *http.Request, step int, values map[string]any) (*Result, error) {
	if step < 0 || step >= len(p.form.Steps) {
		return nil, ErrInvalidStep
	}
	s := p.Current(r)
	if step > s.Furthest {
		return nil, ErrStepLocked
	}

	all := merge(s.Values, values)
	if errs := p.form.Validate(step, all); !errs.Empty() {
		return &Result{
			State:  State{Step: step, Furthest: s.Furthest, Values: all, Ref: s.Ref},
			Errors: errs,
		}, nil
	}

	if p.form.Last(step) {
		p.discard(r.Context(), w, s)
		return &Result{
			State:    State{Step: step, Furthest: step, Values: all},
			Errors:   Errors{},
			Complete: true,
			Values:   all,
		}, nil
	}

	next := State{Step: step + 1, Furthest: max(s.Furthest, step+1), Values: all, Ref: s.Ref}
	err := p.save(r.Context(), w, next)
	if errors.Is(err, cookie.ErrTooLarge) {
		return &Result{
			State:  State{Step: step, Furthest: s.Furthest, Values: all, Ref: s.Ref},
			Errors: p.tooLarge(step, values),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{State: next, Errors: Errors{}}, nil
}

// Back moves to the previous step, keeping entered values.
func (p *Processor) Back(w http.ResponseWriter, r *http.Request) (State, error) {
	s := p.Current(r)
	if s.Step == 0 {
		return s, nil
	}
	s.Step--
	return s, p.save(r.Context(), w, s)
}

// Goto jumps to step, which must not be past the furthest reached step.
func (p *Processor) Goto(w http.ResponseWriter, r *http.Request, step int) (State, error) {
	if step < 0 || step >= len(p.form.Steps) {
		return State{}, ErrInvalidStep
	}
	s := p.Current(r)
	if step > s.Furthest {
		return s, ErrStepLocked
	}
	s.Step = step
	return s, p.save(r.Context(), w, s)
}

// Reset discards the stored state.
func (p *Processor) Reset(w http.ResponseWriter, r *http.Request) {
	var s State
	_ = p.cookies.Value(r, p.name, &s)
	p.discard(r.Context(), w, s)
}

func (p *Processor) save(ctx context.Context, w http.ResponseWriter, s State) error {
	if p.values != nil {
		if s.Ref == "" {
			s.Ref = uuid.NewString()
		}
		if err := p.values.Set(ctx, p.valueKey(s.Ref), s.Values, p.ttl); err != nil {
			return err
		}
		s.Values = nil
	}
	return p.cookies.SetValue(w, p.name, s, p.maxAge)
}

func (p *Processor) discard(ctx context.Context, w http.ResponseWriter, s State) {
	if s.Ref != "" && p.values != nil {
		// Entries left behind expire with the cache ttl.
		_ = p.values.Delete(ctx, p.valueKey(s.Ref))
	}
	p.cookies.Delete(w, p.name)
}

func (p *Processor) valueKey(ref string) string {
	return "form:" + p.form.Key + ":" + ref
}

// tooLarge blames the longest value entered on step.
func (p *Processor) tooLarge(step int, values map[string]any) Errors {
	errs := Errors{}
	longest, size := "", -1
	for _, name := range p.form.StepFields(step) {
		if n := len(cast.ToString(values[name])); n > size {
			longest, size = name, n
		}
	}
	if longest != "" {
		errs.Add(longest, MsgTooLarge)
	}
	return errs
}
