package form

import "slices"

// FieldType is the input kind of a field.
type FieldType string

const (
	TypeText       FieldType = "text"
	TypeEmail      FieldType = "email"
	TypePassword   FieldType = "password"
	TypeTextarea   FieldType = "textarea"
	TypeSelect     FieldType = "select"
	TypeRadio      FieldType = "radio"
	TypeCheckbox   FieldType = "checkbox"
	TypeCheckboxes FieldType = "checkboxes"
	TypeHidden     FieldType = "hidden"
	TypeNumber     FieldType = "number"
	TypeDate       FieldType = "date"
	TypeFile       FieldType = "file"
)

var fieldTypes = []FieldType{
	TypeText, TypeEmail, TypePassword, TypeTextarea, TypeSelect, TypeRadio,
	TypeCheckbox, TypeCheckboxes, TypeHidden, TypeNumber, TypeDate, TypeFile,
}

// Form is a built form definition. It is read-only after Build.
type Form struct {
	Key         string
	Action      string
	Method      string
	SubmitLabel string
	BackLabel   string
	// TargetURL is where visitors go after the last step.
	TargetURL string
	// Notify lists addresses that receive completed submissions.
	Notify []string
	Steps  []Step
	Fields map[string]*Field
}

// Step is one page of a multi-step form.
type Step struct {
	Heading   string
	Fieldsets []Fieldset
}

// Fieldset groups fields under an optional legend.
type Fieldset struct {
	Legend string
	Fields []string
}

// Field describes one input.
type Field struct {
	Name        string
	Type        FieldType
	Label       string
	Description string
	Default     any
	Options     []Option
	Attributes  map[string]string
	Constraints []Constraint
}

// Option is a choice of a select, radio or checkboxes field.
type Option struct {
	Value string
	Label string
}

// Multiple reports whether the field holds several values.
func (f *Field) Multiple() bool {
	return f.Type == TypeCheckboxes
}

// Required reports whether the field has a required constraint.
func (f *Field) Required() bool {
	return slices.ContainsFunc(f.Constraints, func(c Constraint) bool {
		return c.Name == "required"
	})
}

// StepFields returns the field names of step in display order.
func (f *Form) StepFields(step int) []string {
	if step < 0 || step >= len(f.Steps) {
		return nil
	}
	var names []string
	for _, fs := range f.Steps[step].Fieldsets {
		names = append(names, fs.Fields...)
	}
	return names
}

// FileFields returns the names of file fields in step.
func (f *Form) FileFields(step int) []string {
	var names []string
	for _, name := range f.StepFields(step) {
		if f.Fields[name].Type == TypeFile {
			names = append(names, name)
		}
	}
	return names
}

// HasFiles reports whether any step has a file field.
func (f *Form) HasFiles() bool {
	for i := range f.Steps {
		if len(f.FileFields(i)) > 0 {
			return true
		}
	}
	return false
}

// Last reports whether step is the final step.
func (f *Form) Last(step int) bool {
	return step == len(f.Steps)-1
}
