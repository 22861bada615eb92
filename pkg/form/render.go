package form

import (
	"context"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/spf13/cast"
)

// StepField is the hidden input holding the submitted step index.
const StepField = "_step"

// Render returns a component that writes the HTML form for state.Step.
// Entered values come from state, falling back to field defaults; errs
// are shown next to their fields.
func Render(f *Form, state State, errs Errors) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		renderForm(&b, f, state, errs)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func renderForm(b *strings.Builder, f *Form, state State, errs Errors) {
	step := min(max(state.Step, 0), len(f.Steps)-1)

	b.WriteString(`<form class="sitegear-form" id="form-` + esc(f.Key) + `"`)
	b.WriteString(` action="` + esc(f.Action) + `" method="` + esc(strings.ToLower(f.Method)) + `"`)
	if f.HasFiles() {
		b.WriteString(` enctype="multipart/form-data"`)
	}
	b.WriteString(">\n")
	b.WriteString(`<input type="hidden" name="` + StepField + `" value="` + strconv.Itoa(step) + `">` + "\n")

	if len(f.Steps) > 1 {
		b.WriteString(`<ol class="form-progress">`)
		for i := range f.Steps {
			heading := esc(f.Steps[i].Heading)
			switch {
			case i == step:
				b.WriteString(`<li class="current">` + heading + `</li>`)
			case i < step || i <= state.Furthest:
				// Reached steps link back through ?step=, see Processor.Goto.
				href := esc(f.Action + "?step=" + strconv.Itoa(i))
				b.WriteString(`<li class="done"><a href="` + href + `">` + heading + `</a></li>`)
			default:
				b.WriteString(`<li class="pending">` + heading + `</li>`)
			}
		}
		b.WriteString("</ol>\n")
	}

	s := f.Steps[step]
	if s.Heading != "" {
		b.WriteString("<h2>" + esc(s.Heading) + "</h2>\n")
	}
	for _, set := range s.Fieldsets {
		b.WriteString("<fieldset>\n")
		if set.Legend != "" {
			b.WriteString("<legend>" + esc(set.Legend) + "</legend>\n")
		}
		for _, name := range set.Fields {
			renderField(b, f, f.Fields[name], value(f.Fields[name], state.Values), errs[name])
		}
		b.WriteString("</fieldset>\n")
	}

	b.WriteString(`<div class="form-actions">`)
	if step > 0 {
		b.WriteString(`<button type="submit" class="back" formnovalidate formaction="` +
			esc(strings.TrimSuffix(f.Action, "/")+"/back") + `">` + esc(f.BackLabel) + `</button>`)
	}
	b.WriteString(`<button type="submit">` + esc(f.SubmitLabel) + `</button>`)
	b.WriteString("</div>\n</form>\n")
}

func renderField(b *strings.Builder, form *Form, f *Field, v any, msgs []string) {
	id := form.Key + "-" + f.Name
	if f.Type == TypeHidden {
		b.WriteString(`<input type="hidden" name="` + esc(f.Name) + `" value="` + esc(cast.ToString(v)) + `">` + "\n")
		return
	}

	class := "field field-" + string(f.Type)
	if f.Required() {
		class += " required"
	}
	if len(msgs) > 0 {
		class += " has-error"
	}
	b.WriteString(`<div class="` + class + `">` + "\n")

	switch f.Type {
	case TypeCheckbox:
		b.WriteString(`<label><input type="checkbox" id="` + esc(id) + `" name="` + esc(f.Name) + `" value="1"`)
		if cast.ToBool(v) {
			b.WriteString(" checked")
		}
		b.WriteString(attrs(f) + "> " + esc(f.Label) + "</label>\n")
	case TypeRadio, TypeCheckboxes:
		typ := "radio"
		if f.Type == TypeCheckboxes {
			typ = "checkbox"
		}
		selected := stringsOf(v)
		b.WriteString("<fieldset><legend>" + esc(f.Label) + "</legend>\n")
		for i, o := range f.Options {
			b.WriteString(`<label><input type="` + typ + `" id="` + esc(id+"-"+strconv.Itoa(i)) +
				`" name="` + esc(f.Name) + `" value="` + esc(o.Value) + `"`)
			if v != nil && slices.Contains(selected, o.Value) {
				b.WriteString(" checked")
			}
			b.WriteString(attrs(f) + "> " + esc(o.Label) + "</label>\n")
		}
		b.WriteString("</fieldset>\n")
	default:
		b.WriteString(`<label for="` + esc(id) + `">` + esc(f.Label) + "</label>\n")
		renderControl(b, id, f, v)
	}

	if f.Description != "" {
		b.WriteString(`<p class="field-description">` + esc(f.Description) + "</p>\n")
	}
	if len(msgs) > 0 {
		b.WriteString(`<ul class="field-errors">`)
		for _, m := range msgs {
			b.WriteString("<li>" + esc(m) + "</li>")
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</div>\n")
}

func renderControl(b *strings.Builder, id string, f *Field, v any) {
	common := ` id="` + esc(id) + `" name="` + esc(f.Name) + `"`
	if f.Required() {
		common += " required"
	}
	common += attrs(f)

	switch f.Type {
	case TypeTextarea:
		b.WriteString("<textarea" + common + ">" + esc(cast.ToString(v)) + "</textarea>\n")
	case TypeSelect:
		current := cast.ToString(v)
		b.WriteString("<select" + common + ">\n")
		for _, o := range f.Options {
			b.WriteString(`<option value="` + esc(o.Value) + `"`)
			if o.Value == current {
				b.WriteString(" selected")
			}
			b.WriteString(">" + esc(o.Label) + "</option>\n")
		}
		b.WriteString("</select>\n")
	case TypeFile, TypePassword:
		b.WriteString(`<input type="` + string(f.Type) + `"` + common + ">\n")
	default:
		b.WriteString(`<input type="` + string(f.Type) + `"` + common + ` value="` + esc(cast.ToString(v)) + `">` + "\n")
	}
}

func value(f *Field, values map[string]any) any {
	if v, ok := values[f.Name]; ok {
		return v
	}
	return f.Default
}

// attrs renders extra attributes in name order.
func attrs(f *Field) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(f.Attributes)) {
		b.WriteString(" " + esc(k) + `="` + esc(f.Attributes[k]) + `"`)
	}
	return b.String()
}

func esc(s string) string { return templ.EscapeString(s) }
