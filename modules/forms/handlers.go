package forms

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/form"
	"github.com/sitegear/sitegear/pkg/storage"
)

// resultKey carries an invalid submission to the form component.
type resultKey struct{ form string }

const maxMemory = 32 << 20

var (
	formKey = sitegear.NewExtractor(sitegear.FromParam("key"))
	// Posted steps come from the hidden field, requested ones from ?step=.
	postedStep    = sitegear.NewExtractor(sitegear.FromForm(form.StepField))
	requestedStep = sitegear.NewExtractor(sitegear.FromQuery("step"))
)

// Routes implements sitegear.Mounter.
func (m *Module) Routes(r sitegear.Router) {
	r.GET("/{key}", m.show) // ?step=N returns to a reached step
	r.POST("/{key}", m.submit)
	r.POST("/{key}/back", m.back)
}

func (m *Module) processor(c sitegear.Context) (*form.Processor, error) {
	key, _ := formKey.Extract(c)
	p, ok := m.processors[key]
	if !ok {
		return nil, sitegear.ErrNotFound(http.StatusText(http.StatusNotFound))
	}
	return p, nil
}

func (m *Module) show(c sitegear.Context) error {
	p, err := m.processor(c)
	if err != nil {
		return err
	}
	if step, found, err := requestedStep.Int(c); found {
		if err != nil {
			return sitegear.ErrBadRequest("Invalid form step")
		}
		if _, err := p.Goto(c.Response(), c.Request(), step); err != nil {
			if errors.Is(err, form.ErrStepLocked) || errors.Is(err, form.ErrInvalidStep) {
				return c.Redirect(http.StatusSeeOther, p.Form().Action)
			}
			return err
		}
		return c.Redirect(http.StatusSeeOther, p.Form().Action)
	}
	var done bool
	if err := m.cookies.Flash(c.Response(), c.Request(), flashKey(p.Form().Key), &done); err == nil && done {
		c.View().Set("complete", true)
	}
	return m.page(c, p.Form(), http.StatusOK)
}

// page renders forms/<key> when the site has it, forms/form otherwise.
func (m *Module) page(c sitegear.Context, f *form.Form, code int) error {
	v := c.View()
	v.Set("form", f.Key)
	if m.host != nil && m.host.Renderer.Exists("forms/"+f.Key) {
		v.SetTargets("forms", f.Key)
	} else {
		v.SetTargets("forms", "form")
	}
	return c.Page(code)
}

func (m *Module) submit(c sitegear.Context) error {
	p, err := m.processor(c)
	if err != nil {
		return err
	}
	f := p.Form()
	r := c.Request()
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return sitegear.ErrBadRequest("Invalid form data", sitegear.WithError(err))
	}
	step, found, err := postedStep.Int(c)
	if !found || err != nil || step < 0 || step >= len(f.Steps) {
		return sitegear.ErrBadRequest("Invalid form step")
	}

	values := f.Bind(step, r.PostForm)
	uploadErrs, err := m.upload(c, f, step, values)
	if err != nil {
		return err
	}
	if !uploadErrs.Empty() {
		cur := p.Current(r)
		return m.invalid(c, f, &form.Result{
			State:  form.State{Step: step, Furthest: cur.Furthest, Values: values},
			Errors: uploadErrs,
		})
	}

	res, err := p.Submit(c.Response(), r, step, values)
	if errors.Is(err, form.ErrStepLocked) || errors.Is(err, form.ErrInvalidStep) {
		return sitegear.ErrBadRequest("Invalid form step", sitegear.WithError(err))
	}
	if err != nil {
		return err
	}
	if !res.Errors.Empty() {
		return m.invalid(c, f, res)
	}
	if !res.Complete {
		return c.Redirect(http.StatusSeeOther, f.Action)
	}

	sub := &Submission{
		ID:        uuid.New(),
		Form:      f.Key,
		Values:    res.Values,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.submissions.Save(c, sub); err != nil {
		return err
	}
	c.LogInfo("form submitted", "form", f.Key, "submission", sub.ID.String())
	if err := m.dispatch(c, f, sub); err != nil {
		c.LogError("form notification failed", "form", f.Key, "error", err)
	}

	if err := m.cookies.SetFlash(c.Response(), flashKey(f.Key), true); err != nil {
		return err
	}
	target := f.TargetURL
	if target == "" {
		target = f.Action
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// upload stores the step's files and records their keys in values.
// Rejected files become field errors.
func (m *Module) upload(c sitegear.Context, f *form.Form, step int, values map[string]any) (form.Errors, error) {
	errs := form.Errors{}
	mf := c.Request().MultipartForm
	if mf == nil {
		return errs, nil
	}
	for _, name := range f.FileFields(step) {
		files := mf.File[name]
		if len(files) == 0 || files[0].Size == 0 {
			continue
		}
		info, err := c.UploadFile(files[0],
			storage.WithPrefix("forms/"+f.Key),
			storage.WithValidation(storage.MaxSize(m.maxSize)),
		)
		var fe *storage.FileError
		switch {
		case errors.As(err, &fe):
			errs.Add(name, fe.Message)
		case err != nil:
			return nil, err
		default:
			values[name] = info.Key
		}
	}
	return errs, nil
}

func (m *Module) invalid(c sitegear.Context, f *form.Form, res *form.Result) error {
	c.Set(resultKey{f.Key}, res)
	return m.page(c, f, http.StatusUnprocessableEntity)
}

func (m *Module) back(c sitegear.Context) error {
	p, err := m.processor(c)
	if err != nil {
		return err
	}
	if _, err := p.Back(c.Response(), c.Request()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, p.Form().Action)
}

func flashKey(form string) string { return "form_" + form + "_done" }
